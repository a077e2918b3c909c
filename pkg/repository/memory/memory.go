package memory

import (
	"github.com/secmon-lab/techinsights/pkg/domain/interfaces"
)

// Repository is an alias for Memory to match the pattern
type Repository = Memory

// Memory keeps everything in process. It backs tests and local runs without a database.
type Memory struct {
	insight *insightRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		insight: newInsightRepository(),
	}
}

func (m *Memory) Insight() interfaces.InsightRepository {
	return m.insight
}

func (m *Memory) Close() error {
	return nil
}
