// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build race

package bufq

// RaceEnabled is true when the race detector is active.
// Tests use it to skip concurrent payload checks: slot bytes are ordered
// by atomix acquire/release on the slot sequence, which the detector
// does not model.
const RaceEnabled = true
