package utilities

import (
	"os"
	"strconv"

	"github.com/bwmarrin/snowflake"
	"github.com/segmentio/ksuid"
)

// Ids are JSON numbers and must stay below 2^53 so clients decoding them as
// float64 keep them exact: 41 bits of milliseconds + 4 node bits + 8 step bits.
func init() {
	snowflake.NodeBits = 4
	snowflake.StepBits = 8
}

// NewKSUID generates a new globally unique KSUID string.
func NewKSUID() string {
	return ksuid.New().String()
}

// IDGenerator hands out time-ordered int64 ids from a single snowflake node.
// The node keeps the per-millisecond sequence, so it must be shared rather
// than rebuilt per call.
type IDGenerator struct {
	node *snowflake.Node
}

// NewIDGenerator builds a generator for the given node id (0..15).
func NewIDGenerator(nodeID int64) (*IDGenerator, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, err
	}
	return &IDGenerator{node: node}, nil
}

// NewIDGeneratorFromEnv uses SNOWFLAKE_NODE, defaulting to node 1 when the
// variable is missing or not a number.
func NewIDGeneratorFromEnv() (*IDGenerator, error) {
	nodeID, err := strconv.ParseInt(os.Getenv("SNOWFLAKE_NODE"), 10, 64)
	if err != nil {
		nodeID = 1
	}
	return NewIDGenerator(nodeID)
}

// Next returns a new id.
func (g *IDGenerator) Next() int64 {
	return g.node.Generate().Int64()
}
