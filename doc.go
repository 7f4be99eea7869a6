// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package lcdi2c is a container for drivers that control HD44780 compatible
// character LCD displays over an I²C GPIO expander backpack.
package lcdi2c
