package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestNewProducer(t *testing.T) {
	p := NewProducer([]string{"localhost:9092"}, "classroom.events")
	defer p.Close()

	assert.Equal(t, "classroom.events", p.Topic())
}

func TestCreateTopic_NoBrokers(t *testing.T) {
	err := CreateTopic(nil, "classroom.alerts", 1, 1, zap.NewNop())
	assert.EqualError(t, err, "no brokers configured")
}
