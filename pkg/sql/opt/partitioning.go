// Copyright 2019 The Cockroach Authors.
//
// Use of this software is governed by the Business Source License included
// in the file licenses/BSL.txt and at www.mariadb.com/bsl11.
//
// Change Date: 2022-10-01
//
// On the date above, in accordance with the Business Source License, use
// of this software will be governed by the Apache License, Version 2.0,
// included in the file licenses/APL.txt and at
// https://www.apache.org/licenses/LICENSE-2.0

package opt

// PartitioningHandle identifies the distribution strategy of data across
// workers (§3 Partitioning handle).
type PartitioningHandle uint8

const (
	// UnknownPartitioning is the zero value and is never valid on a
	// constructed exchange node.
	UnknownPartitioning PartitioningHandle = iota
	SinglePartitioning
	FixedHashPartitioning
	FixedBroadcastPartitioning
	ScaledWriterPartitioning
	ScaledWriterHashPartitioning
	RoundRobinPartitioning
	SourcePartitioning
)

// IsScaleWriterLike returns true for the two partitioning variants that
// adjust writer count to throughput (§3, §4.8).
func (p PartitioningHandle) IsScaleWriterLike() bool {
	return p == ScaledWriterPartitioning || p == ScaledWriterHashPartitioning
}

// String implements fmt.Stringer.
func (p PartitioningHandle) String() string {
	switch p {
	case SinglePartitioning:
		return "SINGLE"
	case FixedHashPartitioning:
		return "FIXED_HASH"
	case FixedBroadcastPartitioning:
		return "FIXED_BROADCAST"
	case ScaledWriterPartitioning:
		return "SCALED_WRITER"
	case ScaledWriterHashPartitioning:
		return "SCALED_WRITER_HASH"
	case RoundRobinPartitioning:
		return "ROUND_ROBIN"
	case SourcePartitioning:
		return "SOURCE"
	default:
		return "UNKNOWN"
	}
}
