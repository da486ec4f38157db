// Package httpstorage keeps maps on a remote HTTP map service. Ids are prefixed with "h".
//
// The service exposes:
//
//	GET  {base}/maps/{id}  map content
//	PUT  {base}/maps/{id}  replace an existing map
//	POST {base}/maps       create a map, answers {"id": "..."}
package httpstorage

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
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/jljohnson/mindmup/app"
	"github.com/jljohnson/mindmup/app/logger"
	"github.com/jljohnson/mindmup/config"
	"github.com/jljohnson/mindmup/mapcontent"
	"github.com/jljohnson/mindmup/storageadapter"
)

const CName = "mindmup.storage.http"

const Prefix = "h"

const (
	defaultTimeout = 30 * time.Second
	maxBodySize    = 16 << 20
)

var log = logger.NewNamed(CName)

var ErrNoBaseURL = errors.New("remote storage url is not set")

type storageConfigGetter interface {
	GetStorage() config.Storage
}

type HTTPStorage interface {
	storageadapter.StorageAdapter
	app.Component
}

type Options struct {
	BaseURL string
	Token   string
	// RPS limits outgoing requests per second, zero disables the limit
	RPS    float64
	Client *http.Client
}

// New returns the adapter; an empty BaseURL is taken with the rest of the options from the config component
func New(opts Options) HTTPStorage {
	return &httpStorage{opts: opts}
}

type httpStorage struct {
	opts    Options
	base    *url.URL
	client  *http.Client
	limiter *rate.Limiter
}

func (h *httpStorage) Init(a *app.App) (err error) {
	if h.opts.BaseURL == "" {
		conf := app.MustComponent[storageConfigGetter](a).GetStorage()
		h.opts.BaseURL = conf.RemoteURL
		h.opts.Token = conf.RemoteToken
		h.opts.RPS = conf.RemoteRPS
	}
	if h.opts.BaseURL == "" {
		return ErrNoBaseURL
	}
	if h.base, err = url.Parse(strings.TrimRight(h.opts.BaseURL, "/")); err != nil {
		return fmt.Errorf("parse remote storage url: %w", err)
	}
	h.client = h.opts.Client
	if h.client == nil {
		h.client = &http.Client{Timeout: defaultTimeout}
	}
	if h.opts.RPS > 0 {
		h.limiter = rate.NewLimiter(rate.Limit(h.opts.RPS), 1)
	}
	return nil
}

func (h *httpStorage) Name() (name string) {
	return CName
}

func (h *httpStorage) Recognises(mapID string) bool {
	return len(mapID) > len(Prefix) && strings.HasPrefix(mapID, Prefix)
}

func (h *httpStorage) LoadMap(ctx context.Context, mapID string) (*mapcontent.Content, string, error) {
	if !h.Recognises(mapID) {
		return nil, "", storageadapter.NewFailure(storageadapter.ReasonNotFound, mapID)
	}
	body, err := h.do(ctx, http.MethodGet, h.mapURL(mapID), nil, mapID)
	if err != nil {
		return nil, "", err
	}
	content, err := mapcontent.Parse(body)
	if err != nil {
		return nil, "", storageadapter.NewFailure(storageadapter.ReasonFormatError, mapID).Wrap(err)
	}
	return content, mapID, nil
}

func (h *httpStorage) SaveMap(ctx context.Context, content *mapcontent.Content, previousID string) (string, error) {
	data, err := mapcontent.Marshal(content)
	if err != nil {
		return "", storageadapter.NewFailure(storageadapter.ReasonFormatError).Wrap(err)
	}
	if h.Recognises(previousID) {
		if _, err = h.do(ctx, http.MethodPut, h.mapURL(previousID), data, previousID); err != nil {
			return "", err
		}
		return previousID, nil
	}
	body, err := h.do(ctx, http.MethodPost, h.base.JoinPath("maps").String(), data, "")
	if err != nil {
		return "", err
	}
	var created struct {
		ID string `json:"id"`
	}
	if err = json.Unmarshal(body, &created); err != nil || created.ID == "" {
		return "", storageadapter.NewFailure(storageadapter.ReasonFormatError, "create response").Wrap(err)
	}
	mapID := Prefix + created.ID
	log.Debug("map created", zap.String("mapId", mapID))
	return mapID, nil
}

func (h *httpStorage) mapURL(mapID string) string {
	return h.base.JoinPath("maps", strings.TrimPrefix(mapID, Prefix)).String()
}

func (h *httpStorage) do(ctx context.Context, method, target string, payload []byte, mapID string) ([]byte, error) {
	if h.limiter != nil {
		if err := h.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return nil, storageadapter.NewFailure(storageadapter.ReasonStorageError, mapID).Wrap(err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if h.opts.Token != "" {
		req.Header.Set("Authorization", "Bearer "+h.opts.Token)
	}
	resp, err := h.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, storageadapter.NewFailure(storageadapter.ReasonNetworkError, mapID).Wrap(err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, storageadapter.NewFailure(storageadapter.ReasonNetworkError, mapID).Wrap(err)
	}
	if failure := statusFailure(resp.StatusCode, mapID); failure != nil {
		log.Debug("remote storage error", zap.String("method", method), zap.Int("status", resp.StatusCode), zap.String("mapId", mapID))
		return nil, failure
	}
	return body, nil
}

func statusFailure(status int, mapID string) *storageadapter.Failure {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return storageadapter.NewFailure(storageadapter.ReasonNoAccessAllowed, mapID)
	case status == http.StatusNotFound:
		return storageadapter.NewFailure(storageadapter.ReasonNotFound, mapID)
	case status == http.StatusTooManyRequests, status >= 500:
		return storageadapter.NewFailure(storageadapter.ReasonNetworkError, mapID, status)
	default:
		return storageadapter.NewFailure(storageadapter.ReasonStorageError, mapID, status)
	}
}
