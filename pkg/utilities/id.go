package utilities

import (
	"os"
	"strconv"
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/segmentio/ksuid"
)

// NewKSUID generates a new globally unique KSUID string.
func NewKSUID() string {
	return ksuid.New().String()
}

// IDGenerator hands out snowflake ids for rows whose primary key is assigned
// by the service rather than by the database.
type IDGenerator interface {
	NextID() int64
}

type snowflakeGenerator struct {
	node *snowflake.Node
}

func (g *snowflakeGenerator) NextID() int64 {
	return g.node.Generate().Int64()
}

// NewSnowflakeGenerator builds a generator for the given node id (0..1023).
func NewSnowflakeGenerator(nodeID int64) (IDGenerator, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, err
	}
	return &snowflakeGenerator{node: node}, nil
}

var (
	defaultGenOnce sync.Once
	defaultGen     IDGenerator
	defaultGenErr  error
)

// SnowflakeFromEnv returns a process-wide generator using SNOWFLAKE_NODE,
// defaulting to node 1 when the variable is unset or invalid.
func SnowflakeFromEnv() (IDGenerator, error) {
	defaultGenOnce.Do(func() {
		nodeID := int64(1)
		if v, err := strconv.ParseInt(os.Getenv("SNOWFLAKE_NODE"), 10, 64); err == nil {
			nodeID = v
		}
		defaultGen, defaultGenErr = NewSnowflakeGenerator(nodeID)
	})
	return defaultGen, defaultGenErr
}
