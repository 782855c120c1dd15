// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package canframe

import (
	"encoding/binary"
)

// Frame is a classic CAN frame.
//
// Wire layout (16 bytes):
//
//	0  ID       uint32, identifier with EFF/RTR/ERR flags
//	4  Len      payload length 0..8
//	5  reserved
//	6  reserved
//	7  Len8DLC  raw DLC 9..15 when Len is 8, else 0
//	8  Data     8 bytes
type Frame struct {
	ID      uint32
	Len     uint8
	Len8DLC uint8
	Data    [MaxDLen]byte
}

// Payload returns the first Len bytes of Data.
func (f *Frame) Payload() []byte {
	return f.Data[:min(int(f.Len), MaxDLen)]
}

// Validate reports whether the frame is well formed.
func (f *Frame) Validate() error {
	if f.Len > MaxDLen {
		return ErrInvalidLength
	}
	if f.Len8DLC != 0 && (f.Len != MaxDLen || f.Len8DLC <= MaxDLC || f.Len8DLC > MaxRawDLC) {
		return ErrInvalidLength
	}
	if !validID(f.ID) {
		return ErrInvalidID
	}
	return nil
}

// MarshalBinary encodes the frame into MTU bytes.
func (f *Frame) MarshalBinary() ([]byte, error) {
	return f.AppendBinary(make([]byte, 0, MTU))
}

// AppendBinary appends the MTU-byte encoding of the frame to b.
func (f *Frame) AppendBinary(b []byte) ([]byte, error) {
	b = binary.LittleEndian.AppendUint32(b, f.ID)
	b = append(b, f.Len, 0, 0, f.Len8DLC)
	return append(b, f.Data[:]...), nil
}

// UnmarshalBinary decodes the first MTU bytes of b.
func (f *Frame) UnmarshalBinary(b []byte) error {
	if len(b) < MTU {
		return ErrShortBuffer
	}
	f.ID = binary.LittleEndian.Uint32(b[0:4])
	f.Len = b[4]
	f.Len8DLC = b[7]
	copy(f.Data[:], b[8:MTU])
	return nil
}

// FDFrame is a CAN FD frame.
//
// Wire layout (72 bytes):
//
//	0  ID     uint32, identifier with EFF/RTR/ERR flags
//	4  Len    payload length, one of the DLCToLen values
//	5  Flags  FDBitRateSwitch, FDErrorState, FDFrameFlag
//	6  reserved
//	7  reserved
//	8  Data   64 bytes
type FDFrame struct {
	ID    uint32
	Len   uint8
	Flags uint8
	Data  [FDMaxDLen]byte
}

// Payload returns the first Len bytes of Data.
func (f *FDFrame) Payload() []byte {
	return f.Data[:min(int(f.Len), FDMaxDLen)]
}

// Validate reports whether the frame is well formed.
func (f *FDFrame) Validate() error {
	if f.Len > FDMaxDLen || DLCToLen(LenToDLC(f.Len)) != f.Len {
		return ErrInvalidLength
	}
	if !validID(f.ID) {
		return ErrInvalidID
	}
	return nil
}

// MarshalBinary encodes the frame into FDMTU bytes.
func (f *FDFrame) MarshalBinary() ([]byte, error) {
	return f.AppendBinary(make([]byte, 0, FDMTU))
}

// AppendBinary appends the FDMTU-byte encoding of the frame to b.
func (f *FDFrame) AppendBinary(b []byte) ([]byte, error) {
	b = binary.LittleEndian.AppendUint32(b, f.ID)
	b = append(b, f.Len, f.Flags, 0, 0)
	return append(b, f.Data[:]...), nil
}

// UnmarshalBinary decodes the first FDMTU bytes of b.
func (f *FDFrame) UnmarshalBinary(b []byte) error {
	if len(b) < FDMTU {
		return ErrShortBuffer
	}
	f.ID = binary.LittleEndian.Uint32(b[0:4])
	f.Len = b[4]
	f.Flags = b[5]
	copy(f.Data[:], b[8:FDMTU])
	return nil
}

// XLFrame is a CAN XL frame.
//
// Wire layout (XLHeaderSize + payload, payload padded to at least 64):
//
//	0   Prio      uint32, 11-bit priority, VCID in bits 16..23
//	4   Flags     XLFrameFlag, XLSEC
//	5   SDT       service data unit type
//	6   Len       uint16, payload length 1..2048
//	8   AF        uint32, acceptance field
//	12  Data
//
// Data holds the payload; only the first Len bytes are encoded.
type XLFrame struct {
	Prio  uint32
	Flags uint8
	SDT   uint8
	Len   uint16
	AF    uint32
	Data  []byte
}

// VCID returns the virtual CAN network identifier carried in Prio.
func (f *XLFrame) VCID() uint8 {
	return uint8(f.Prio >> XLVCIDOffset)
}

// SetVCID stores id in the VCID bits of Prio.
func (f *XLFrame) SetVCID(id uint8) {
	f.Prio = f.Prio&^XLVCIDMask | uint32(id)<<XLVCIDOffset
}

// Payload returns the first Len bytes of Data.
func (f *XLFrame) Payload() []byte {
	return f.Data[:min(int(f.Len), len(f.Data))]
}

// EncodedLen returns the number of bytes MarshalBinary produces.
func (f *XLFrame) EncodedLen() int {
	return XLHeaderSize + max(int(f.Len), XLMinMTU-XLHeaderSize)
}

// Validate reports whether the frame is well formed.
func (f *XLFrame) Validate() error {
	if f.Flags&XLFrameFlag == 0 {
		return ErrInvalidFlags
	}
	if f.Len < XLMinDLen || f.Len > XLMaxDLen || int(f.Len) > len(f.Data) {
		return ErrInvalidLength
	}
	if f.Prio&^XLVCIDMask > XLPrioMask {
		return ErrInvalidID
	}
	return nil
}

// MarshalBinary encodes the header and the first Len bytes of Data,
// zero-padded to XLMinMTU.
func (f *XLFrame) MarshalBinary() ([]byte, error) {
	return f.AppendBinary(make([]byte, 0, f.EncodedLen()))
}

// AppendBinary appends the encoding of the frame to b.
// Returns ErrInvalidLength if Len exceeds XLMaxDLen or len(Data).
func (f *XLFrame) AppendBinary(b []byte) ([]byte, error) {
	if f.Len > XLMaxDLen || int(f.Len) > len(f.Data) {
		return b, ErrInvalidLength
	}
	b = binary.LittleEndian.AppendUint32(b, f.Prio)
	b = append(b, f.Flags, f.SDT)
	b = binary.LittleEndian.AppendUint16(b, f.Len)
	b = binary.LittleEndian.AppendUint32(b, f.AF)
	b = append(b, f.Data[:f.Len]...)
	for pad := XLMinMTU - XLHeaderSize - int(f.Len); pad > 0; pad-- {
		b = append(b, 0)
	}
	return b, nil
}

// UnmarshalBinary decodes an encoded frame. Data is reallocated only when
// its capacity is below Len.
func (f *XLFrame) UnmarshalBinary(b []byte) error {
	if len(b) < XLHeaderSize {
		return ErrShortBuffer
	}
	n := binary.LittleEndian.Uint16(b[6:8])
	if n > XLMaxDLen {
		return ErrInvalidLength
	}
	if len(b) < XLHeaderSize+int(n) {
		return ErrShortBuffer
	}
	f.Prio = binary.LittleEndian.Uint32(b[0:4])
	f.Flags = b[4]
	f.SDT = b[5]
	f.Len = n
	f.AF = binary.LittleEndian.Uint32(b[8:12])
	if cap(f.Data) < int(n) {
		f.Data = make([]byte, n)
	}
	f.Data = f.Data[:n]
	copy(f.Data, b[XLHeaderSize:])
	return nil
}
