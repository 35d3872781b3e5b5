package arena

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"strconv"
	"strings"
	"time"

	"github.com/matzehuels/bracketeer/pkg/bracket"
	"github.com/matzehuels/bracketeer/pkg/buildinfo"
	"github.com/matzehuels/bracketeer/pkg/cache"
	"github.com/matzehuels/bracketeer/pkg/errors"
	"github.com/matzehuels/bracketeer/pkg/integrations"
)

// DefaultURL is the address of a locally running backend.
const DefaultURL = "http://localhost:5000"

// Client provides access to the tournament backend API.
// It handles HTTP requests with retries for reads and caching for problem
// markup. Match data is never cached.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	baseURL string
	keyer   cache.Keyer
	backoff cache.Backoff
}

// NewClient creates a backend client for baseURL (default [DefaultURL])
// with the given cache backend for problem markup.
func NewClient(baseURL string, backend cache.Cache, cacheTTL time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	return &Client{
		Client:  integrations.NewClient(backend, "arena:", cacheTTL, map[string]string{
			"User-Agent": buildinfo.UserAgent(),
		}),
		baseURL: strings.TrimRight(baseURL, "/"),
		keyer:   cache.NewDefaultKeyer(),
		backoff: cache.DefaultBackoff,
	}
}

// BaseURL returns the backend address.
func (c *Client) BaseURL() string { return c.baseURL }

// SetBackoff changes the retry schedule used for reads.
func (c *Client) SetBackoff(b cache.Backoff) { c.backoff = b }

func (c *Client) url(segments ...string) string {
	return integrations.JoinURL(c.baseURL, segments...)
}

// FetchBracket retrieves the full match list.
//
// Returns an [errors.ErrCodeNoBracket] error when the backend reports that
// no bracket exists.
func (c *Client) FetchBracket(ctx context.Context) ([]bracket.Match, error) {
	var data []byte
	err := c.backoff.Retry(ctx, func() error {
		var err error
		data, err = c.GetBytes(ctx, c.url("api", "bracket"))
		return err
	})
	if err != nil {
		var se *integrations.StatusError
		if stderrors.As(err, &se) && se.Code < 500 && se.Message() != "" {
			return nil, errors.New(errors.ErrCodeNoBracket, "%s", se.Message())
		}
		return nil, mapError(err, "fetch bracket")
	}
	return bracket.DecodeBytes(data)
}

// CreateBracket asks the backend to generate a new bracket of the given kind
// from its participant list and returns the generated matches.
func (c *Client) CreateBracket(ctx context.Context, kind bracket.Topology) ([]bracket.Match, error) {
	if _, ok := bracket.ParseTopology(kind.String()); !ok {
		return nil, errors.New(errors.ErrCodeInvalidInput, "unsupported bracket kind %q", kind)
	}
	data, err := c.Post(ctx, c.url("api", "create_bracket"), map[string]string{"type": kind.String()})
	if err != nil {
		return nil, mapError(err, "create %s bracket", kind)
	}
	matches, err := bracket.DecodeBytes(data)
	if errors.Is(err, errors.ErrCodeNoBracket) {
		return nil, errors.New(errors.ErrCodeActionRejected, "%s", errors.UserMessage(err))
	}
	return matches, err
}

// FetchMatch retrieves a single match.
func (c *Client) FetchMatch(ctx context.Context, num int) (bracket.Match, error) {
	var m bracket.Match
	err := c.backoff.Retry(ctx, func() error {
		return c.Get(ctx, c.url("api", "match", strconv.Itoa(num)), &m)
	})
	if err != nil {
		return bracket.Match{}, mapMatchError(err, num, "fetch match %d", num)
	}
	return m, nil
}

// StartMatch records the start time of a match on the backend.
func (c *Client) StartMatch(ctx context.Context, num int) error {
	data, err := c.Post(ctx, c.url("api", "start", strconv.Itoa(num)), nil)
	if err != nil {
		return mapMatchError(err, num, "start match %d", num)
	}
	_, err = decodeAck(data)
	return err
}

// CompleteMatch records that participant (1 or 2) finished. The backend
// computes the elapsed time from the match start and advances the winner
// once both results are in. When the backend answers with the updated match
// it is returned; a bare acknowledgement returns nil.
func (c *Client) CompleteMatch(ctx context.Context, num, participant int) (*bracket.Match, error) {
	if participant != 1 && participant != 2 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "participant must be 1 or 2, got %d", participant)
	}
	data, err := c.Post(ctx, c.url("api", "complete", strconv.Itoa(num)), map[string]int{"participant": participant})
	if err != nil {
		return nil, mapMatchError(err, num, "complete match %d", num)
	}
	return decodeAck(data)
}

// ResetMatch clears the start time and results of a match.
func (c *Client) ResetMatch(ctx context.Context, num int) error {
	data, err := c.Post(ctx, c.url("api", "reset", strconv.Itoa(num)), nil)
	if err != nil {
		return mapMatchError(err, num, "reset match %d", num)
	}
	_, err = decodeAck(data)
	return err
}

// FetchProblem retrieves the pre-rendered markup of a problem. Markup is
// cached by backend and problem identifier; set refresh to bypass the cache.
func (c *Client) FetchProblem(ctx context.Context, id string, refresh bool) (string, error) {
	if strings.TrimSpace(id) == "" {
		return "", errors.New(errors.ErrCodeInvalidInput, "match has no problem")
	}
	var markup string
	key := c.keyer.ProblemKey(c.baseURL, id)
	err := c.Cached(ctx, key, refresh, &markup, func() error {
		var err error
		markup, err = c.GetText(ctx, c.url("api", "problem", id))
		return err
	})
	if err != nil {
		if stderrors.Is(err, integrations.ErrNotFound) {
			return "", errors.Wrap(errors.ErrCodeNotFound, err, "problem %s", id)
		}
		return "", mapError(err, "fetch problem %s", id)
	}
	return markup, nil
}

type ack struct {
	Success *bool  `json:"success"`
	Error   string `json:"error"`
	Num     *int   `json:"match_num"`
}

// decodeAck interprets a 2xx action response: {"success": true}, an
// {"error": "..."} rejection, or the updated match.
func decodeAck(data []byte) (*bracket.Match, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return nil, nil
	}
	var a ack
	if err := json.Unmarshal([]byte(trimmed), &a); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode response")
	}
	switch {
	case a.Error != "":
		return nil, errors.New(errors.ErrCodeActionRejected, "%s", a.Error)
	case a.Success != nil && !*a.Success:
		return nil, errors.New(errors.ErrCodeActionRejected, "backend reported failure")
	case a.Num != nil:
		var m bracket.Match
		if err := json.Unmarshal([]byte(trimmed), &m); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode match")
		}
		return &m, nil
	}
	return nil, nil
}

func mapMatchError(err error, num int, format string, args ...any) error {
	if stderrors.Is(err, integrations.ErrNotFound) {
		return errors.Wrap(errors.ErrCodeMatchNotFound, err, "match %d", num)
	}
	return mapError(err, format, args...)
}

// mapError converts transport errors into coded errors. A 4xx response
// carrying an {"error"} body is the backend refusing the action.
func mapError(err error, format string, args ...any) error {
	var se *integrations.StatusError
	switch {
	case stderrors.Is(err, context.DeadlineExceeded):
		return errors.Wrap(errors.ErrCodeTimeout, err, format, args...)
	case stderrors.Is(err, integrations.ErrRateLimited):
		return errors.Wrap(errors.ErrCodeRateLimited, err, format, args...)
	case stderrors.As(err, &se) && se.Code < 500 && se.Message() != "":
		return errors.New(errors.ErrCodeActionRejected, "%s", se.Message())
	case stderrors.Is(err, integrations.ErrRejected):
		return errors.Wrap(errors.ErrCodeActionRejected, err, format, args...)
	case stderrors.Is(err, integrations.ErrNotFound):
		return errors.Wrap(errors.ErrCodeNotFound, err, format, args...)
	case stderrors.Is(err, integrations.ErrNetwork):
		return errors.Wrap(errors.ErrCodeNetwork, err, format, args...)
	default:
		return errors.Wrap(errors.ErrCodeInternal, err, format, args...)
	}
}
