package mail

import (
	"context"
	stderrors "errors"
	"fmt"
	"html"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/paintball-league/internal/platform/logging"
	"github.com/riskibarqy/paintball-league/internal/platform/resilience"
	"github.com/riskibarqy/paintball-league/internal/usecase"
	"github.com/valyala/bytebufferpool"
	"github.com/valyala/fasthttp"
)

const verificationSubject = "Verify your Paintball League email"

var errMailTransient = crerr.New("mail api transient failure")

type HTTPMailerConfig struct {
	Endpoint       string
	APIKey         string
	From           string
	Timeout        time.Duration
	CircuitBreaker resilience.CircuitBreakerConfig
}

// HTTPMailer delivers mail through a JSON mail API (Resend-style
// `POST /emails` with a bearer key).
type HTTPMailer struct {
	http     *fasthttp.Client
	endpoint string
	apiKey   string
	from     string
	timeout  time.Duration
	breaker  *resilience.CircuitBreaker
	logger   *logging.Logger
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
	HTML    string   `json:"html"`
}

func NewHTTPMailer(cfg HTTPMailerConfig, logger *logging.Logger) *HTTPMailer {
	if logger == nil {
		logger = logging.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPMailer{
		http: &fasthttp.Client{
			Name:                "paintball-league",
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxIdleConnDuration: time.Minute,
		},
		endpoint: strings.TrimSpace(cfg.Endpoint),
		apiKey:   strings.TrimSpace(cfg.APIKey),
		from:     strings.TrimSpace(cfg.From),
		timeout:  timeout,
		breaker:  resilience.NewCircuitBreaker(cfg.CircuitBreaker),
		logger:   logger.Named("mail"),
	}
}

func (m *HTTPMailer) SendVerification(ctx context.Context, mail usecase.VerificationMail) error {
	to := strings.TrimSpace(mail.To)
	if to == "" || strings.TrimSpace(mail.Link) == "" {
		return fmt.Errorf("%w: verification mail needs a recipient and a link", usecase.ErrInvalidInput)
	}

	err := m.breaker.Execute(func() error {
		return m.post(ctx, verificationMessage(m.from, to, mail.Link))
	}, func(err error) bool { return crerr.Is(err, errMailTransient) })
	if err != nil {
		if stderrors.Is(err, resilience.ErrCircuitOpen) {
			m.logger.WarnContext(ctx, "mail circuit breaker rejected request", "state", m.breaker.State())
			return fmt.Errorf("%w: mail api unavailable: %w", usecase.ErrDependencyUnavailable, err)
		}
		return err
	}

	m.logger.InfoContext(ctx, "verification email sent", "user_id", mail.UserID)
	return nil
}

func (m *HTTPMailer) post(ctx context.Context, msg sendRequest) error {
	raw, err := sonic.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode mail request: %w", err)
	}
	body := bytebufferpool.Get()
	defer bytebufferpool.Put(body)
	_, _ = body.Write(raw)

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(m.endpoint)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.SetBody(body.B)

	deadline := time.Now().Add(m.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	if err := m.http.DoDeadline(req, resp, deadline); err != nil {
		return fmt.Errorf("%w: send mail: %w: %v", usecase.ErrDependencyUnavailable, errMailTransient, err)
	}

	switch status := resp.StatusCode(); {
	case status >= 200 && status < 300:
		return nil
	case status == fasthttp.StatusTooManyRequests || status >= 500:
		m.logger.WarnContext(ctx, "mail api non-2xx", "status_code", status)
		return fmt.Errorf("%w: mail api status=%d: %w", usecase.ErrDependencyUnavailable, status, errMailTransient)
	default:
		m.logger.WarnContext(ctx, "mail api rejected message", "status_code", status)
		return fmt.Errorf("%w: mail api status=%d", usecase.ErrDependencyUnavailable, status)
	}
}

func verificationMessage(from, to, link string) sendRequest {
	return sendRequest{
		From:    from,
		To:      []string{to},
		Subject: verificationSubject,
		Text:    "Confirm your email address to access the dashboard:\n\n" + link + "\n",
		HTML: `<p>Confirm your email address to access the dashboard.</p>` +
			`<p><a href="` + html.EscapeString(link) + `">Verify email</a></p>`,
	}
}
