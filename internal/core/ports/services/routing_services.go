package services

import (
	"github.com/SscSPs/unified_pay/internal/core/domain"
)

// RailRecommender picks a settlement rail for a payment context.
type RailRecommender interface {
	// Recommend is total: with no eligible rail it returns domain.BankTransfer.
	Recommend(pctx domain.PaymentContext) domain.PaymentMethod
}

// RailExplainer exposes the scoring behind a recommendation.
type RailExplainer interface {
	Explain(pctx domain.PaymentContext) []domain.RailScore
	Catalog() []domain.PaymentOption
}

// RoutingSvcFacade combines all routing interfaces.
type RoutingSvcFacade interface {
	RailRecommender
	RailExplainer
}
