package inquiry

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Simplici0/estimator/internal/notify"
)

// Repository is the storage the service needs.
type Repository interface {
	Create(ctx context.Context, i *Inquiry) error
}

// DefaultDeliveryTimeout bounds the emails sent for one inquiry.
const DefaultDeliveryTimeout = 2 * time.Minute

// Service accepts intake submissions and sends the related emails.
type Service struct {
	repo            Repository
	renderer        *notify.Renderer
	sender          notify.Sender
	from            string
	adminEmail      string
	deliveryTimeout time.Duration
	logger          *zap.Logger

	deliveries sync.WaitGroup
}

// ServiceOptions wires a Service.
type ServiceOptions struct {
	Repo       Repository
	Renderer   *notify.Renderer
	Sender     notify.Sender
	From       string
	AdminEmail string
	Logger     *zap.Logger

	// DeliveryTimeout defaults to DefaultDeliveryTimeout.
	DeliveryTimeout time.Duration
}

func NewService(opts ServiceOptions) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := opts.DeliveryTimeout
	if timeout <= 0 {
		timeout = DefaultDeliveryTimeout
	}
	return &Service{
		repo:            opts.Repo,
		renderer:        opts.Renderer,
		sender:          opts.Sender,
		from:            opts.From,
		adminEmail:      opts.AdminEmail,
		deliveryTimeout: timeout,
		logger:          logger,
	}
}

// Submit validates and stores i, then notifies the admin and the client in
// the background. Only validation and storage errors are returned; delivery
// failures are logged because the inquiry is already safely recorded.
func (s *Service) Submit(ctx context.Context, i *Inquiry) error {
	i.Normalize()
	if err := i.Validate(); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, i); err != nil {
		return err
	}

	// Delivery outlives the request.
	dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.deliveryTimeout)
	s.deliveries.Add(1)
	go func(i Inquiry) {
		defer s.deliveries.Done()
		defer cancel()
		s.notify(dctx, i)
	}(*i)
	return nil
}

// Wait blocks until in-flight deliveries finish or ctx is done.
func (s *Service) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.deliveries.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Service) notify(ctx context.Context, i Inquiry) {
	g, gctx := errgroup.WithContext(ctx)
	if s.adminEmail != "" {
		g.Go(func() error {
			s.deliver(gctx, notify.AdminInquiry, s.adminEmail, i.Email, i)
			return nil
		})
	}
	g.Go(func() error {
		s.deliver(gctx, notify.ClientConfirmation, i.Email, "", i)
		return nil
	})
	_ = g.Wait()
}

func (s *Service) deliver(ctx context.Context, tmpl, to, replyTo string, i Inquiry) {
	log := s.logger.With(zap.String("inquiry_id", i.ID), zap.String("template", tmpl))

	msg, err := s.renderer.Render(tmpl, i)
	if err != nil {
		log.Error("render inquiry email", zap.Error(err))
		return
	}
	msg.From = s.from
	msg.To = to
	msg.ReplyTo = replyTo

	if err := s.sender.Send(ctx, msg); err != nil {
		log.Error("send inquiry email", zap.Error(err))
		return
	}
	log.Info("inquiry email sent")
}
