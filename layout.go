// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package concq

// pad is cache-line padding to prevent false sharing between hot atomic
// fields. 64 bytes is assumed rather than taken from a toolchain constant,
// since Go exposes none, and the teacher's own dependency graph hardcodes
// the same assumption.
type pad [64]byte
