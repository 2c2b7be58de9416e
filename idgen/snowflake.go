package idgen

import (
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	node     *snowflake.Node
	nodeOnce sync.Once
	nodeErr  error
)

// Init sets the snowflake node number. Calling it is optional; the first
// GenerateID falls back to node 1.
func Init(nodeID int64) error {
	nodeOnce.Do(func() {
		node, nodeErr = snowflake.NewNode(nodeID)
	})
	return nodeErr
}

func GenerateID() int64 {
	if err := Init(1); err != nil {
		panic("idgen: " + err.Error())
	}
	return node.Generate().Int64()
}
