package balancer

import (
	"hash/fnv"

	"github.com/segmentio/kafka-go"
)

type BaseBalancer struct {
	numPartitions int
}

type IBaseBalancer interface {
	Balance(msg kafka.Message, partitions ...int) (partition int)
}

func NewBaseBalancer(numPartitions int) BaseBalancer {
	return BaseBalancer{numPartitions: numPartitions}
}

// OrderBalancer routes by order id so every event of one order lands on the
// same partition and consumers see its lifecycle in order.
type OrderBalancer struct {
	BaseBalancer
}

func NewOrderBalancer(numPartitions int) IBaseBalancer {
	return &OrderBalancer{BaseBalancer: NewBaseBalancer(numPartitions)}
}

func (c *OrderBalancer) Balance(msg kafka.Message, partitions ...int) (partition int) {
	h := fnv.New32a()
	h.Write(msg.Key)
	key := int(h.Sum32())

	if len(partitions) != 0 {
		return partitions[key%len(partitions)]
	}

	return key % c.numPartitions
}
