// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package regmap models byte-addressable device registers reached over a
// two-wire bus.
//
// A driver builds its register map once, at construction:
//
//	dev := regmap.NewDevice(bus, 0x30)
//	ctrl1 := regmap.NewCachedRegister(dev, 0x0A, 0)
//	bandwidth := ctrl1.Field(regmap.MustField(1, 0))
//
// ByteRegister caches the last value read or written. Partial updates are
// two explicit steps: MaskedSet stages the merged byte in the cache and
// WriteCached commits it with a single bus write. FieldView.Set does both.
//
// Nothing in this package is safe for concurrent use; a driver owns its
// registers and the transport serialises bus access.
package regmap
