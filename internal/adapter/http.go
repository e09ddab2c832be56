package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sethvargo/go-retry"

	"github.com/buildnote/draftkeeper/internal/config"
	"github.com/buildnote/draftkeeper/internal/logger"
	"github.com/buildnote/draftkeeper/internal/utils"
	"github.com/buildnote/draftkeeper/models"
)

type httpServerAdapter struct {
	client *utils.HTTPClient

	logger *logger.Logger
}

// NewHTTPServerAdapter constructs an HTTP/REST implementation of [ServerAdapter].
// It normalises and validates the base URL from adapterCfg.HTTPAddress and
// configures the underlying HTTP client with the resolved base URL and request
// timeout.
//
// Returns an error if adapterCfg.HTTPAddress is empty or cannot be parsed as a
// valid URL.
func NewHTTPServerAdapter(adapterCfg config.ClientAdapter, logger *logger.Logger) (ServerAdapter, error) {
	client := utils.NewHTTPClient()
	baseURL, err := normalizeBaseURL(adapterCfg.HTTPAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid adapter http address: %w", err)
	}

	client.
		SetBaseURL(baseURL).
		SetTimeout(adapterCfg.RequestTimeout)

	return &httpServerAdapter{client: client, logger: logger}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// Probe implements [ServerAdapter]. It GETs the state descriptor from
// GET /api/annotations/state/{resourceID} and retries transient failures
// (transport errors, 5xx) twice with a short backoff. A 404 means the server
// has no record of the resource and yields (nil, nil).
func (h *httpServerAdapter) Probe(ctx context.Context, resourceID string) (*models.Snapshot, error) {
	var snap *models.Snapshot

	backoff := retry.WithMaxRetries(2, retry.NewExponential(200*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		resp, reqErr := h.client.R().
			SetContext(ctx).
			Get("/api/annotations/state/" + resourceID)
		if reqErr != nil {
			return retry.RetryableError(fmt.Errorf("probe request: %w", reqErr))
		}

		if resp.StatusCode() == http.StatusNotFound {
			snap = nil
			return nil
		}
		if mapErr := mapHTTPError(resp); mapErr != nil {
			if retryableStatus(resp.StatusCode()) {
				return retry.RetryableError(mapErr)
			}
			return mapErr
		}

		var s models.Snapshot
		if decErr := json.Unmarshal(resp.Body(), &s); decErr != nil {
			return fmt.Errorf("probe decode response: %w", decErr)
		}
		snap = &s
		return nil
	})
	if err != nil {
		h.logger.Warn().
			Str("func", "httpServerAdapter.Probe").
			Str("resource_id", resourceID).
			Err(err).
			Msg("server state probe failed")
		return nil, err
	}

	return snap, nil
}

// Load implements [ServerAdapter]. It GETs the full annotation set from
// GET /api/annotations/full/{resourceID}.
func (h *httpServerAdapter) Load(ctx context.Context, resourceID string) (models.AnnotationSet, error) {
	resp, err := h.client.R().
		SetContext(ctx).
		Get("/api/annotations/full/" + resourceID)
	if err != nil {
		return models.AnnotationSet{}, fmt.Errorf("load request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.AnnotationSet{}, err
	}

	var set models.AnnotationSet
	if err = json.Unmarshal(resp.Body(), &set); err != nil {
		return models.AnnotationSet{}, fmt.Errorf("load decode response: %w", err)
	}

	return set, nil
}

// List implements [ServerAdapter]. It GETs GET /api/annotations, optionally
// filtered by ?project=.
func (h *httpServerAdapter) List(ctx context.Context, project string) ([]models.Snapshot, error) {
	req := h.client.R().SetContext(ctx)
	if project != "" {
		req.SetQueryParam("project", project)
	}

	resp, err := req.Get("/api/annotations")
	if err != nil {
		return nil, fmt.Errorf("list request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	var list models.ListResponse
	if err = json.Unmarshal(resp.Body(), &list); err != nil {
		return nil, fmt.Errorf("list decode response: %w", err)
	}

	return list.Snapshots, nil
}

// Save implements [ServerAdapter]. It PUTs the request body to
// PUT /api/annotations/{resourceID} and folds the three possible server
// answers into a tagged [models.SaveResult]: 200 with the new snapshot, 409
// with the structured conflict body, anything else as a failure.
func (h *httpServerAdapter) Save(ctx context.Context, req models.SaveRequest) models.SaveResult {
	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		Put("/api/annotations/" + req.ResourceID)
	if err != nil {
		return models.SaveFailedResult(fmt.Errorf("save request: %w", err))
	}

	return h.saveResultFromResponse(resp, req.ResourceID, "httpServerAdapter.Save")
}

// Delete implements [ServerAdapter] with the same outcome contract as Save.
func (h *httpServerAdapter) Delete(ctx context.Context, req models.DeleteRequest) models.SaveResult {
	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		Delete("/api/annotations/" + req.ResourceID)
	if err != nil {
		return models.SaveFailedResult(fmt.Errorf("delete request: %w", err))
	}

	return h.saveResultFromResponse(resp, req.ResourceID, "httpServerAdapter.Delete")
}

func (h *httpServerAdapter) saveResultFromResponse(resp *resty.Response, resourceID, caller string) models.SaveResult {
	if resp.StatusCode() == http.StatusConflict {
		var conflict models.ConflictResponse
		if decErr := json.Unmarshal(resp.Body(), &conflict); decErr != nil {
			// a 409 with an unreadable body still proves the server moved,
			// but without the current token it cannot seed reconciliation
			return models.SaveFailedResult(fmt.Errorf("decode conflict response: %w", decErr))
		}

		h.logger.Info().
			Str("func", caller).
			Str("resource_id", resourceID).
			Time("current_updated_at", conflict.CurrentUpdatedAt).
			Msg("server rejected mutation: version conflict")

		return models.SaveConflictResult(models.Snapshot{
			ResourceID:  conflict.ResourceID,
			ObjectCount: conflict.ObjectCount,
			UpdatedAt:   conflict.CurrentUpdatedAt,
		})
	}

	if err := mapHTTPError(resp); err != nil {
		h.logger.Warn().
			Str("func", caller).
			Str("resource_id", resourceID).
			Err(err).
			Msg("mutation failed")
		return models.SaveFailedResult(err)
	}

	if resp.StatusCode() == http.StatusNoContent {
		return models.SaveOKResult(models.Snapshot{ResourceID: resourceID})
	}

	var snap models.Snapshot
	if decErr := json.Unmarshal(resp.Body(), &snap); decErr != nil {
		return models.SaveFailedResult(fmt.Errorf("decode snapshot response: %w", decErr))
	}

	return models.SaveOKResult(snap)
}
