package usecase

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/secmon-lab/themis/pkg/domain/interfaces"
	"github.com/secmon-lab/themis/pkg/domain/model/config"
)

type UseCases struct {
	repo       interfaces.Repository
	storage    interfaces.Storage
	riskConfig *config.RiskConfig
	authOpts   []AuthOption
	registerer prometheus.Registerer
	clock      func() time.Time
	navDelay   time.Duration

	Risk     *RiskUseCase
	Task     *TaskUseCase
	Document *DocumentUseCase
	Control  *ControlUseCase
	SoA      *SoAUseCase
	Gap      *GapUseCase
	User     *UserUseCase
	Wizard   *WizardUseCase
}

type Option func(*UseCases)

func WithRiskConfig(cfg *config.RiskConfig) Option {
	return func(uc *UseCases) {
		uc.riskConfig = cfg
	}
}

// WithStorage sets where uploaded document files are kept
func WithStorage(storage interfaces.Storage) Option {
	return func(uc *UseCases) {
		uc.storage = storage
	}
}

// WithAuth configures the user use case
func WithAuth(opts ...AuthOption) Option {
	return func(uc *UseCases) {
		uc.authOpts = append(uc.authOpts, opts...)
	}
}

// WithMetrics registers use case metrics to reg
func WithMetrics(reg prometheus.Registerer) Option {
	return func(uc *UseCases) {
		uc.registerer = reg
	}
}

func WithClock(clock func() time.Time) Option {
	return func(uc *UseCases) {
		uc.clock = clock
	}
}

// WithConfirmationDelay sets how long a submitted wizard shows its notice before navigating
func WithConfirmationDelay(d time.Duration) Option {
	return func(uc *UseCases) {
		uc.navDelay = d
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:  repo,
		clock: time.Now,
	}

	for _, opt := range opts {
		opt(uc)
	}

	uc.Risk = NewRiskUseCase(repo, uc.riskConfig, uc.clock)
	uc.Task = NewTaskUseCase(repo)
	uc.Document = NewDocumentUseCase(repo, uc.storage)
	uc.Control = NewControlUseCase(repo)
	uc.SoA = NewSoAUseCase(repo)
	uc.Gap = NewGapUseCase(repo)
	uc.User = NewUserUseCase(repo, uc.riskConfig, append([]AuthOption{WithAuthClock(uc.clock)}, uc.authOpts...)...)
	uc.Wizard = NewWizardUseCase(uc.Risk, uc.Task, uc.User, uc.registerer, uc.clock)
	uc.Wizard.confirmationDelay = uc.navDelay

	return uc
}
