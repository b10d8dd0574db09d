package testfixtures

import (
	"time"

	"github.com/example/care-booking/internal/application"
)

// ServiceFactory assists tests with constructing application services using
// deterministic identifiers and clocks.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:       NewClock(time.Time{}),
		IDGenerator: NewIDGenerator("id"),
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.IDGenerator == nil {
		factory.IDGenerator = NewIDGenerator("id")
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithIDGenerator overrides the identifier generator used by the factory.
func WithIDGenerator(generator *IDGenerator) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.IDGenerator = generator
	}
}

// BookingServiceDeps captures dependencies for constructing a booking service.
type BookingServiceDeps struct {
	Bookings           application.BookingStore
	Workers            application.WorkerDirectory
	Clients            application.ClientDirectory
	MinLeadTime        time.Duration
	ConfirmationWindow time.Duration
	Now                func() time.Time
}

// NewBookingService builds a booking service using the supplied dependencies
// combined with the factory defaults.
func (f *ServiceFactory) NewBookingService(deps BookingServiceDeps) *application.BookingService {
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewBookingService(
		deps.Bookings,
		deps.Workers,
		deps.Clients,
		deps.MinLeadTime,
		deps.ConfirmationWindow,
		now,
	)
}

// WorkerServiceDeps captures dependencies for constructing a worker service.
type WorkerServiceDeps struct {
	Workers     application.WorkerRepository
	IDGenerator func() string
	Now         func() time.Time
}

// NewWorkerService builds a worker service using the supplied dependencies.
func (f *ServiceFactory) NewWorkerService(deps WorkerServiceDeps) *application.WorkerService {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewWorkerService(deps.Workers, idGen, now)
}

// ClientServiceDeps captures dependencies for constructing a client service.
type ClientServiceDeps struct {
	Clients     application.ClientRepository
	IDGenerator func() string
	Now         func() time.Time
}

// NewClientService builds a client service using the supplied dependencies.
func (f *ServiceFactory) NewClientService(deps ClientServiceDeps) *application.ClientService {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewClientService(deps.Clients, idGen, now)
}

// SearchServiceDeps captures dependencies for constructing a search service.
type SearchServiceDeps struct {
	Workers  application.WorkerRepository
	Clients  application.ClientRepository
	CacheTTL time.Duration
	Now      func() time.Time
}

// NewSearchService builds a search service using the supplied dependencies.
func (f *ServiceFactory) NewSearchService(deps SearchServiceDeps) *application.SearchService {
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewSearchService(deps.Workers, deps.Clients, deps.CacheTTL, now)
}
