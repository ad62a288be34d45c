package httptransport_test

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cardhandler "cartoes/internal/cardapplication/handler"
	"cartoes/internal/cardapplication/service"
	"cartoes/internal/eligibility"
	"cartoes/internal/health"
	"cartoes/internal/platform/metrics"
	"cartoes/internal/registration"
	ratelimitmw "cartoes/internal/ratelimit/middleware"
	"cartoes/internal/ratelimit/store/bucket"
	httptransport "cartoes/internal/transport/http"
	"cartoes/pkg/testutil"
)

func newRouter(t *testing.T, burst int, trustProxy bool) http.Handler {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)
	reg := metrics.NewRegistry()

	policy := eligibility.DefaultPolicy()
	evaluator := eligibility.NewEvaluator(eligibility.NewStandardChain(policy), policy.MinimumAge)
	registrar := registration.NewSimulated(registration.WithLogger(logger))
	svc := service.New(evaluator, registrar, service.WithLogger(logger))

	return httptransport.NewRouter(httptransport.Deps{
		Logger:     logger,
		Registry:   reg,
		Cards:      cardhandler.New(svc, logger),
		Health:     health.New(logger, registrar),
		RateLimit:  ratelimitmw.New(bucket.New(0.001, burst), logger),
		TrustProxy: trustProxy,
	})
}

// applicationBody describes an applicant whose age matches the wall clock the
// requesttime middleware will record.
func applicationBody(age int, state string, income float64) map[string]any {
	birth := time.Now().AddDate(-age, 0, -1)
	return map[string]any{
		"cliente": map[string]any{
			"nome":              "Carla Mendes",
			"cpf":               "555.666.777-88",
			"idade":             age,
			"data_nascimento":   birth.Format("2006-01-02"),
			"uf":                state,
			"renda_mensal":      income,
			"email":             "carla@example.com",
			"telefone_whatsapp": "+5521966665555",
		},
	}
}

func TestRouter(t *testing.T) {
	testutil.Given(t, "the card application router", func(t *testing.T) {
		router := newRouter(t, 100, false)

		testutil.When(t, "a qualifying client applies", func(t *testing.T) {
			req := testutil.NewJSONRequest(t, http.MethodPost, "/cartoes", applicationBody(27, "SP", 4000))
			rr := testutil.DoRequest(router, req)

			testutil.Then(t, "it returns the default rule's offers with an application number", func(t *testing.T) {
				testutil.AssertStatus(t, rr, http.StatusOK)
				resp := testutil.UnmarshalResponse[cardhandler.SubmitResponse](t, rr)
				_, err := uuid.Parse(resp.ApplicationID)
				require.NoError(t, err)
				require.Len(t, resp.Offers, 2)
				assert.Equal(t, "CARTAO_SEM_ANUIDADE", resp.Offers[0].CardType)
				assert.Equal(t, "CARTAO_DE_PARCEIROS", resp.Offers[1].CardType)
				assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
				assert.NotEmpty(t, rr.Header().Get("X-RateLimit-Limit"))
			})
		})

		testutil.When(t, "the client qualifies for nothing", func(t *testing.T) {
			req := testutil.NewJSONRequest(t, http.MethodPost, "/cartoes", applicationBody(45, "BA", 900))
			rr := testutil.DoRequest(router, req)

			testutil.Then(t, "it answers 204", func(t *testing.T) {
				testutil.AssertStatus(t, rr, http.StatusNoContent)
			})
		})

		testutil.When(t, "the client is underage", func(t *testing.T) {
			req := testutil.NewJSONRequest(t, http.MethodPost, "/cartoes", applicationBody(16, "SP", 9000))
			rr := testutil.DoRequest(router, req)

			testutil.Then(t, "it answers a business rule problem", func(t *testing.T) {
				testutil.AssertProblem(t, rr, http.StatusUnprocessableEntity, "business-rule-violation")
			})
		})

		testutil.When(t, "calling an unknown path", func(t *testing.T) {
			rr := testutil.DoRequest(router, httptest.NewRequest(http.MethodGet, "/cartoes/123", nil))

			testutil.Then(t, "it answers a not found problem", func(t *testing.T) {
				testutil.AssertProblem(t, rr, http.StatusNotFound, "resource-not-found")
			})
		})

		testutil.When(t, "probing health", func(t *testing.T) {
			rr := testutil.DoRequest(router, httptest.NewRequest(http.MethodGet, "/health", nil))

			testutil.Then(t, "every component is up", func(t *testing.T) {
				testutil.AssertStatus(t, rr, http.StatusOK)
				resp := testutil.UnmarshalResponse[health.Response](t, rr)
				assert.Equal(t, health.StatusUp, resp.Status)
				assert.Equal(t, health.StatusUp, resp.Components["registration"].Status)
			})
		})

		testutil.When(t, "scraping metrics", func(t *testing.T) {
			rr := testutil.DoRequest(router, httptest.NewRequest(http.MethodGet, "/metrics", nil))

			testutil.Then(t, "the Prometheus exposition is served", func(t *testing.T) {
				testutil.AssertStatus(t, rr, http.StatusOK)
				assert.Contains(t, rr.Body.String(), "go_goroutines")
			})
		})
	})

	testutil.Given(t, "a router allowing a single application per client", func(t *testing.T) {
		router := newRouter(t, 1, false)

		testutil.When(t, "the same client applies twice", func(t *testing.T) {
			first := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/cartoes", applicationBody(27, "SP", 4000)))
			second := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/cartoes", applicationBody(27, "SP", 4000)))

			testutil.Then(t, "the second is rate limited", func(t *testing.T) {
				testutil.AssertStatus(t, first, http.StatusOK)
				testutil.AssertProblem(t, second, http.StatusTooManyRequests, "rate-limit-exceeded")
				assert.NotEmpty(t, second.Header().Get("Retry-After"))
			})
		})

		testutil.When(t, "health is probed after the limit is spent", func(t *testing.T) {
			rr := testutil.DoRequest(router, httptest.NewRequest(http.MethodGet, "/health/readiness", nil))

			testutil.Then(t, "probes are not rate limited", func(t *testing.T) {
				testutil.AssertStatus(t, rr, http.StatusOK)
			})
		})
	})

	testutil.Given(t, "a router that does not trust forwarding headers", func(t *testing.T) {
		router := newRouter(t, 1, false)

		testutil.When(t, "one client rotates X-Forwarded-For", func(t *testing.T) {
			codes := make([]int, 0, 2)
			for _, forwarded := range []string{"203.0.113.1", "203.0.113.2"} {
				req := testutil.NewJSONRequest(t, http.MethodPost, "/cartoes", applicationBody(27, "SP", 4000))
				req.RemoteAddr = "192.0.2.50:4000"
				req.Header.Set("X-Forwarded-For", forwarded)
				codes = append(codes, testutil.DoRequest(router, req).Code)
			}

			testutil.Then(t, "the limit still applies to the peer address", func(t *testing.T) {
				assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests}, codes)
			})
		})
	})

	testutil.Given(t, "a router behind a trusted proxy", func(t *testing.T) {
		router := newRouter(t, 1, true)

		testutil.When(t, "two clients arrive through the same proxy", func(t *testing.T) {
			codes := make([]int, 0, 2)
			for _, forwarded := range []string{"203.0.113.1", "203.0.113.2"} {
				req := testutil.NewJSONRequest(t, http.MethodPost, "/cartoes", applicationBody(27, "SP", 4000))
				req.RemoteAddr = "10.0.0.5:4000"
				req.Header.Set("X-Forwarded-For", forwarded)
				codes = append(codes, testutil.DoRequest(router, req).Code)
			}

			testutil.Then(t, "each is limited separately", func(t *testing.T) {
				assert.Equal(t, []int{http.StatusOK, http.StatusOK}, codes)
			})
		})
	})
}
