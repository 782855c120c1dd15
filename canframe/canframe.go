// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package canframe encodes Linux SocketCAN frames as bufq slot payloads.
//
// The three layouts match struct can_frame, struct canfd_frame and
// struct canxl_frame byte for byte, in little-endian order:
//
//   - [Frame]   classic CAN, always [MTU] (16) bytes
//   - [FDFrame] CAN FD, always [FDMTU] (72) bytes
//   - [XLFrame] CAN XL, [XLHeaderSize] + max(Len, 64) bytes, up to [XLMTU] (2060)
//
// Every encoding fits a single bufq slot. [Decode] tells the layouts
// apart by length alone, the way a SocketCAN read does:
//
//	n, err := q.Dequeue(buf)
//	if err != nil {
//	    return err
//	}
//	f, err := canframe.Decode(buf[:n])
//	switch f := f.(type) {
//	case *canframe.Frame:
//	case *canframe.FDFrame:
//	case *canframe.XLFrame:
//	}
package canframe

import (
	"errors"
)

// Identifier flags and masks.
const (
	EFFFlag = 0x80000000 // Extended frame format
	RTRFlag = 0x40000000 // Remote transmission request
	ErrFlag = 0x20000000 // Error message frame

	SFFMask = 0x000007FF // Standard frame format identifier
	EFFMask = 0x1FFFFFFF // Extended frame format identifier
	ErrMask = 0x1FFFFFFF // Identifier without EFF/RTR/ERR flags

	SFFIDBits = 11
	EFFIDBits = 29
)

// Payload length limits.
const (
	MaxDLC    = 8
	MaxRawDLC = 15
	MaxDLen   = 8

	FDMaxDLC  = 15
	FDMaxDLen = 64

	XLMinDLC     = 0
	XLMaxDLC     = 2047
	XLMaxDLCMask = 0x07FF
	XLMinDLen    = 1
	XLMaxDLen    = 2048
)

// CAN FD flags.
const (
	FDBitRateSwitch = 0x01 // Second bitrate for payload data
	FDErrorState    = 0x02 // Error state indicator of the transmitting node
	FDFrameFlag     = 0x04 // Marks a CAN FD frame in dual use
)

// CAN XL flags and VCID layout.
const (
	XLFrameFlag = 0x80 // Mandatory on every CAN XL frame
	XLSEC       = 0x01 // Simple extended content

	XLPrioMask = SFFMask
	XLPrioBits = SFFIDBits

	XLVCIDOffset  = 16
	XLVCIDValMask = 0xFF
	XLVCIDMask    = XLVCIDValMask << XLVCIDOffset
)

// Encoded sizes.
const (
	MTU          = 16
	FDMTU        = 72
	XLHeaderSize = 12
	XLMinMTU     = XLHeaderSize + 64
	XLMTU        = XLHeaderSize + XLMaxDLen
)

var (
	// ErrShortBuffer is returned when a buffer is too small for the frame.
	ErrShortBuffer = errors.New("canframe: short buffer")
	// ErrInvalidLength is returned for a payload length the frame type
	// cannot carry.
	ErrInvalidLength = errors.New("canframe: invalid payload length")
	// ErrInvalidID is returned for an identifier outside its format's range.
	ErrInvalidID = errors.New("canframe: invalid identifier")
	// ErrInvalidFlags is returned when mandatory flags are missing.
	ErrInvalidFlags = errors.New("canframe: invalid flags")
	// ErrUnknownMTU is returned by Decode for a length matching no layout.
	ErrUnknownMTU = errors.New("canframe: unknown MTU")
)

// Decode parses b as the layout its length selects and validates it.
// The result is a *Frame, *FDFrame or *XLFrame.
func Decode(b []byte) (any, error) {
	var f interface {
		UnmarshalBinary([]byte) error
		Validate() error
	}
	switch n := len(b); {
	case n == MTU:
		f = new(Frame)
	case n == FDMTU:
		f = new(FDFrame)
	case n >= XLMinMTU && n <= XLMTU:
		f = new(XLFrame)
	default:
		return nil, ErrUnknownMTU
	}
	if err := f.UnmarshalBinary(b); err != nil {
		return nil, err
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// validID checks the identifier bits of a classic or FD frame.
func validID(id uint32) bool {
	if id&EFFFlag != 0 {
		return id&^(EFFFlag|RTRFlag|ErrFlag) <= EFFMask
	}
	return id&^(RTRFlag|ErrFlag) <= SFFMask
}

var dlcToLen = [16]uint8{0, 1, 2, 3, 4, 5, 6, 7, 8, 12, 16, 20, 24, 32, 48, 64}

// DLCToLen converts a CAN FD data length code to a payload length.
// Codes above 15 are masked to their low four bits.
func DLCToLen(dlc uint8) uint8 {
	return dlcToLen[dlc&0x0F]
}

// LenToDLC converts a payload length to the smallest CAN FD data length
// code that can carry it. Lengths above 64 map to 15.
func LenToDLC(n uint8) uint8 {
	if n <= 8 {
		return n
	}
	for dlc := uint8(9); dlc < 15; dlc++ {
		if dlcToLen[dlc] >= n {
			return dlc
		}
	}
	return FDMaxDLC
}
