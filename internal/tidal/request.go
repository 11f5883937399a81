// Package tidal is a minimal client for the Tidal API used to search cover
// art.
package tidal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/llehouerou/tagdeck/internal/config"
)

// Session status reported by Tidal when the access token is no longer valid.
const (
	statusUnauthorized   = 401
	subStatusNoSession   = 6001
	maxReplySize         = 4 << 20
	authorizationHeader  = "Authorization"
	tidalTokenHeader     = "X-Tidal-Token"
	formURLEncodedHeader = "application/x-www-form-urlencoded"
)

var (
	ErrEmptyReply   = errors.New("empty reply")
	ErrMissingItems = errors.New("json object is missing items")
)

// Service holds the Tidal credentials. It is shared by every request and
// logged out when Tidal rejects the session.
type Service struct {
	mu          sync.RWMutex
	cfg         config.TidalConfig
	accessToken string
}

func NewService(cfg config.TidalConfig) *Service {
	return &Service{cfg: cfg, accessToken: cfg.AccessToken}
}

func (s *Service) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken != ""
}

func (s *Service) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// Logout drops the access token.
func (s *Service) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = ""
}

func (s *Service) CountryCode() string { return s.cfg.CountryCode }
func (s *Service) ClientID() string    { return s.cfg.ClientID }
func (s *Service) APIURL() string      { return s.cfg.APIURL }

func (s *Service) ResourcesURL() string { return s.cfg.ResourcesURL }

// Param is one query parameter. Order is kept as given.
type Param struct {
	Key   string
	Value string
}

// BaseRequest builds and decodes Tidal API requests.
type BaseRequest struct {
	service *Service
	client  *http.Client
	log     logrus.FieldLogger
}

func NewBaseRequest(service *Service, client *http.Client, log logrus.FieldLogger) *BaseRequest {
	if client == nil {
		client = http.DefaultClient
	}
	return &BaseRequest{service: service, client: client, log: log.WithField("service", "tidal")}
}

// CreateRequest builds a GET request for resource. The country code is
// appended to params and every parameter is percent-encoded.
func (b *BaseRequest) CreateRequest(ctx context.Context, resource string, params []Param) (*http.Request, error) {
	params = append(params, Param{Key: "countryCode", Value: b.service.CountryCode()})

	query := make([]string, 0, len(params))
	for _, p := range params {
		query = append(query, percentEncode(p.Key)+"="+percentEncode(p.Value))
	}

	u, err := url.Parse(b.service.APIURL() + "/" + resource)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	u.RawQuery = strings.Join(query, "&")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", formURLEncodedHeader)
	if token := b.service.AccessToken(); token != "" {
		req.Header.Set(authorizationHeader, "Bearer "+token)
	} else if id := b.service.ClientID(); id != "" {
		req.Header.Set(tidalTokenHeader, id)
	}
	return req, nil
}

// Get sends a request built by CreateRequest and returns the reply body.
func (b *BaseRequest) Get(ctx context.Context, resource string, params []Param) ([]byte, error) {
	req, err := b.CreateRequest(ctx, resource, params)
	if err != nil {
		return nil, err
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return b.GetReplyData(resp)
}

type apiError struct {
	Status      *int    `json:"status"`
	SubStatus   int     `json:"subStatus"`
	UserMessage *string `json:"userMessage"`
}

// GetReplyData returns the body of a 200 reply. Other replies are turned into
// an error, using Tidal's status and user message when the body has them.
// A reply telling that the session is invalid logs the service out.
func (b *BaseRequest) GetReplyData(resp *http.Response) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxReplySize))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusOK {
		return data, nil
	}

	var msg string
	var apiErr apiError
	if json.Unmarshal(data, &apiErr) == nil && apiErr.Status != nil && apiErr.UserMessage != nil {
		msg = fmt.Sprintf("%s (%d) (%d)", *apiErr.UserMessage, *apiErr.Status, apiErr.SubStatus)
		if *apiErr.Status == statusUnauthorized && apiErr.SubStatus == subStatusNoSession {
			b.log.Warn("session is no longer valid, logging out")
			b.service.Logout()
		}
	} else {
		msg = fmt.Sprintf("Received HTTP code %d", resp.StatusCode)
	}
	return nil, errors.New(msg)
}

// ExtractJSONObj decodes a JSON object.
func ExtractJSONObj(data []byte) (map[string]json.RawMessage, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyReply
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("reply from server missing json data: %w", err)
	}
	if len(obj) == 0 {
		return nil, ErrEmptyReply
	}
	return obj, nil
}

// ExtractItems returns the "items" array of a JSON object.
func ExtractItems(obj map[string]json.RawMessage) ([]json.RawMessage, error) {
	raw, ok := obj["items"]
	if !ok {
		return nil, ErrMissingItems
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("items is not an array: %w", err)
	}
	return items, nil
}

// ErrorsToHTML renders errors one per line for an HTML message box.
func ErrorsToHTML(errs []string) string {
	var sb strings.Builder
	for _, e := range errs {
		sb.WriteString(e)
		sb.WriteString("<br />")
	}
	return sb.String()
}

// percentEncode escapes everything except unreserved characters.
func percentEncode(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
