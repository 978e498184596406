package services

import (
	"context"
	"fmt"
	"time"

	"github.com/phuslu/log"

	"github.com/themizzi/cartverify/internal/models"
)

// Check names shared by reports and the run history
const (
	CheckTotalQuantityName = "verify cart total quantity"
	CheckTotalAmountName   = "verify cart total amount"
)

// CartOperator drives a storefront cart. CartService is the production
// implementation.
type CartOperator interface {
	Open(ctx context.Context) error
	Reset(ctx context.Context) (ResetResult, error)
	GoHome(ctx context.Context) error
	AddProduct(ctx context.Context, p models.ExpectedProduct) error
	ReadLine(ctx context.Context, p models.ExpectedProduct) (models.CartLineItem, error)
	ReadSummary(ctx context.Context) (models.CartSummary, error)
}

var _ CartOperator = (*CartService)(nil)

// RunRecorder defines the interface for run history persistence
type RunRecorder interface {
	CreateRun(run *models.Run) error
	AddCheck(check *models.CheckResult) error
	FinishRun(run *models.Run) error
}

// Report is the outcome of one verification run
type Report struct {
	Run    *models.Run
	Checks []*models.CheckResult
}

// Passed returns true when the run finished and every check passed
func (r *Report) Passed() bool {
	return r.Run != nil && r.Run.Status == models.RunStatusPassed
}

// Failed returns the checks that did not pass
func (r *Report) Failed() []*models.CheckResult {
	var failed []*models.CheckResult
	for _, c := range r.Checks {
		if !c.Passed {
			failed = append(failed, c)
		}
	}
	return failed
}

// VerificationService runs the add-and-verify checks for a product list
type VerificationService struct {
	cart     CartOperator
	oracle   *Oracle
	recorder RunRecorder
	engine   string
	baseURL  string
}

// NewVerificationService creates a verification service. recorder may be nil.
func NewVerificationService(cart CartOperator, oracle *Oracle, recorder RunRecorder, engine, baseURL string) *VerificationService {
	if oracle == nil {
		oracle = NewOracle()
	}
	return &VerificationService{
		cart:     cart,
		oracle:   oracle,
		recorder: recorder,
		engine:   engine,
		baseURL:  baseURL,
	}
}

// Run resets the cart, adds and verifies each product in order, then checks
// the cart totals over the products that were added. A failed product check
// does not stop the run. Setup failures abort it and are returned.
func (s *VerificationService) Run(ctx context.Context, products []models.ExpectedProduct) (*Report, error) {
	run, err := models.NewRun(s.engine, s.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid run: %w", err)
	}
	report := &Report{Run: run}
	s.record("create run", func() error { return s.recorder.CreateRun(run) })

	log.Info().Str("run", run.ID).Str("engine", run.Engine).Str("url", run.BaseURL).Int("products", len(products)).Msg("verification started")

	if err := s.setup(ctx); err != nil {
		s.abort(run, err)
		return report, err
	}

	var added []models.ExpectedProduct
	for _, p := range products {
		start := time.Now()
		ok, err := s.verifyProduct(ctx, p)
		if ok {
			added = append(added, p)
		}
		s.addCheck(report, "add "+p.Name+" to cart and verify", p.Name, err, time.Since(start))
	}

	start := time.Now()
	summary, err := s.cart.ReadSummary(ctx)
	if err != nil {
		s.addCheck(report, CheckTotalQuantityName, "", err, time.Since(start))
		s.addCheck(report, CheckTotalAmountName, "", err, time.Since(start))
	} else {
		s.addCheck(report, CheckTotalQuantityName, "", s.oracle.CheckTotalQuantity(added, summary), time.Since(start))
		s.addCheck(report, CheckTotalAmountName, "", s.oracle.CheckTotalAmount(added, summary), time.Since(start))
	}

	if err := run.Finish(len(report.Failed()) == 0); err != nil {
		return report, err
	}
	s.record("finish run", func() error { return s.recorder.FinishRun(run) })

	log.Info().Str("run", run.ID).Str("status", string(run.Status)).Int("failed", len(report.Failed())).Dur("duration", run.Duration()).Msg("verification finished")
	return report, nil
}

func (s *VerificationService) setup(ctx context.Context) error {
	if err := s.cart.Open(ctx); err != nil {
		return fmt.Errorf("failed to open storefront: %w", err)
	}
	if _, err := s.cart.Reset(ctx); err != nil {
		return fmt.Errorf("failed to reset cart: %w", err)
	}
	return nil
}

// verifyProduct reports whether the product reached the cart along with the
// first failure of its line check
func (s *VerificationService) verifyProduct(ctx context.Context, p models.ExpectedProduct) (bool, error) {
	if err := s.cart.GoHome(ctx); err != nil {
		return false, err
	}
	if err := s.cart.AddProduct(ctx, p); err != nil {
		return false, err
	}
	item, err := s.cart.ReadLine(ctx, p)
	if err != nil {
		return true, err
	}
	return true, s.oracle.CheckLine(p, item)
}

func (s *VerificationService) addCheck(report *Report, name, product string, err error, d time.Duration) {
	check := report.Run.NewCheckResult(name, product, err, d)
	report.Checks = append(report.Checks, check)

	if check.Passed {
		log.Info().Str("check", name).Dur("duration", d).Msg("check passed")
	} else {
		log.Warn().Str("check", name).Str("reason", check.Message).Msg("check failed")
	}
	s.record("add check", func() error { return s.recorder.AddCheck(check) })
}

func (s *VerificationService) abort(run *models.Run, reason error) {
	if err := run.Abort(reason); err != nil {
		log.Error().Err(err).Msg("failed to abort run")
		return
	}
	log.Error().Str("run", run.ID).Err(reason).Msg("verification aborted")
	s.record("abort run", func() error { return s.recorder.FinishRun(run) })
}

// record persists run history. History is best effort and never fails a run.
func (s *VerificationService) record(op string, fn func() error) {
	if s.recorder == nil {
		return
	}
	if err := fn(); err != nil {
		log.Warn().Err(err).Str("op", op).Msg("failed to record run history")
	}
}
