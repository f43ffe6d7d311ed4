package eventbus

import (
	"hash/fnv"

	"github.com/segmentio/kafka-go"
)

// KeyBalancer 以msg key(aggregate id)做hash分區
// 同一個aggregate的事件永遠落在同一分區 保序
type KeyBalancer struct {
	numPartitions int
}

func NewKeyBalancer(numPartitions int) *KeyBalancer {
	return &KeyBalancer{numPartitions: numPartitions}
}

func (b *KeyBalancer) Balance(msg kafka.Message, partitions ...int) (partition int) {
	h := fnv.New32a()
	h.Write(msg.Key)
	sum := int(h.Sum32())

	if len(partitions) != 0 {
		return partitions[sum%len(partitions)]
	}
	if b.numPartitions <= 0 {
		return 0
	}
	return sum % b.numPartitions
}
