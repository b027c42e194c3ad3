// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

//go:build maskdebug

package mask

// debugChecks turns invariant violations into panics.
const debugChecks = true
