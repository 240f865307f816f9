package services

import (
	"context"
	"fmt"
	"log"
	"math/rand/v2"
	"time"

	"gorm.io/gorm"
)

// RANumberGenerator issues return authorization codes of the form
// RA-{yyyymmdd}-{5 digits}. The digits come from a database sequence capped
// at five digits (it cycles once exhausted); when the sequence is unavailable
// a random suffix stands in. Neither path is collision-proof within a single
// day, but the unique index on the RA column turns a collision into a loud
// store error instead of a silent duplicate.
type RANumberGenerator struct {
	db *gorm.DB
}

// NewRANumberGenerator constructs RANumberGenerator.
func NewRANumberGenerator(db *gorm.DB) *RANumberGenerator {
	return &RANumberGenerator{db: db}
}

// Generate returns a fresh RA code.
func (g *RANumberGenerator) Generate(ctx context.Context) string {
	date := time.Now().UTC().Format("20060102")

	var next int64
	err := g.db.WithContext(ctx).Raw("SELECT nextval('return_authorization_seq')").Scan(&next).Error
	if err != nil {
		log.Printf("[Returns] RA sequence unavailable, falling back to random suffix: %v", err)
		return fmt.Sprintf("RA-%s-%05d", date, rand.IntN(100000))
	}

	return fmt.Sprintf("RA-%s-%05d", date, next)
}
