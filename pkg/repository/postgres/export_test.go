package postgres

import (
	"database/sql"

	"github.com/secmon-lab/techinsights/pkg/domain/interfaces"
)

var (
	VectorLiteral    = vectorLiteral
	ParseVector      = parseVector
	SchemaStatements = schemaStatements
)

func NewInsightRepository(db *sql.DB, table string) interfaces.InsightRepository {
	return newInsightRepository(db, table)
}
