package services

// ServiceContainer holds instances of all the application services.
// It is the entry point the handlers use to reach the core.
type ServiceContainer struct {
	Ledger   LedgerSvcFacade
	Routing  RoutingSvcFacade
	Payments PaymentSvcFacade
}
