// Package transifex talks to the Transifex REST API (JSON:API) and
// implements the pull (source string export) and push (translation import)
// workflows.
package transifex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/minios-linux/transync/apiclient"
)

const (
	jsonAPI = "application/vnd.api+json"

	typeDownloads = "resource_strings_async_downloads"
	typeUploads   = "resource_translations_async_uploads"
)

// ---------------------------------------------------------------------------
// JSON:API documents
// ---------------------------------------------------------------------------

// Resource is a translatable unit, identified by "o:org:p:project:r:slug".
type Resource struct {
	ID         string `json:"id"`
	Attributes struct {
		Slug string `json:"slug"`
		Name string `json:"name"`
	} `json:"attributes"`
}

// Slug returns the trailing segment of the resource id.
func (r Resource) Slug() string {
	if i := strings.LastIndex(r.ID, ":"); i >= 0 {
		return r.ID[i+1:]
	}
	return r.ID
}

type resourcePage struct {
	Data  []Resource `json:"data"`
	Links struct {
		Next string `json:"next"`
	} `json:"links"`
}

type identifier struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

type relationship struct {
	Data identifier `json:"data"`
}

type jobAttributes struct {
	Content         string `json:"content,omitempty"`
	ContentEncoding string `json:"content_encoding"`
	FileType        string `json:"file_type"`
}

type jobRequest struct {
	Data struct {
		Attributes    jobAttributes           `json:"attributes"`
		Relationships map[string]relationship `json:"relationships"`
		Type          string                  `json:"type"`
	} `json:"data"`
}

func newJobRequest(typ string, attrs jobAttributes, rels map[string]relationship) jobRequest {
	var req jobRequest
	req.Data.Type = typ
	req.Data.Attributes = attrs
	req.Data.Relationships = rels
	return req
}

// JobError is one entry of a failed job's error list.
type JobError struct {
	Code   string `json:"code"`
	Detail string `json:"detail"`
}

type jobDocument struct {
	Data struct {
		ID         string `json:"id"`
		Attributes struct {
			Status string     `json:"status"`
			Errors []JobError `json:"errors"`
		} `json:"attributes"`
		Links struct {
			Self string `json:"self"`
		} `json:"links"`
	} `json:"data"`
}

// JobFailedError is returned when Transifex reports an import as failed.
type JobFailedError struct {
	Errors []JobError
}

func (e *JobFailedError) Error() string {
	if len(e.Errors) == 0 {
		return "job failed"
	}
	details := make([]string, 0, len(e.Errors))
	for _, je := range e.Errors {
		details = append(details, je.Detail)
	}
	return "job failed: " + strings.Join(details, "; ")
}

// ---------------------------------------------------------------------------
// Client
// ---------------------------------------------------------------------------

// Client issues authenticated Transifex requests over a shared resty client.
type Client struct {
	http  *resty.Client
	token string
}

// NewClient returns a Client using bearer token auth.
func NewClient(http *resty.Client, token string) *Client {
	return &Client{http: http, token: token}
}

func (c *Client) r(ctx context.Context) *resty.Request {
	return c.http.R().
		SetContext(ctx).
		SetAuthToken(c.token).
		SetHeader("Accept", jsonAPI)
}

// ListResources returns every resource of projectID, following pagination.
func (c *Client) ListResources(ctx context.Context, projectID string) ([]Resource, error) {
	var all []Resource
	seen := map[string]bool{}

	req := c.r(ctx).SetQueryParam("filter[project]", projectID)
	url := "/resources"
	for {
		var page resourcePage
		res, err := req.SetResult(&page).ForceContentType("application/json").Get(url)
		if err != nil {
			return nil, fmt.Errorf("fetching resources: %w", err)
		}
		if err := apiclient.Expect("fetching resources", res); err != nil {
			return nil, err
		}
		all = append(all, page.Data...)

		next := page.Links.Next
		if next == "" || seen[next] {
			return all, nil
		}
		seen[next] = true
		url = next
		req = c.r(ctx)
	}
}

// StartDownload requests an asynchronous export of resourceID's source
// strings and returns the URL to fetch the result from.
func (c *Client) StartDownload(ctx context.Context, resourceID string) (string, error) {
	body := newJobRequest(typeDownloads,
		jobAttributes{ContentEncoding: "text", FileType: "default"},
		map[string]relationship{
			"resource": {Data: identifier{ID: resourceID, Type: "resources"}},
		})
	return c.startJob(ctx, "/"+typeDownloads, "initiating download for "+resourceID, body)
}

// Download fetches an export result. Exactly one request is made: anything
// but 200 is an error.
func (c *Client) Download(ctx context.Context, url string) (string, error) {
	res, err := c.r(ctx).Get(url)
	if err != nil {
		return "", fmt.Errorf("fetching download content: %w", err)
	}
	if err := apiclient.Expect("fetching download content", res); err != nil {
		return "", err
	}
	return res.String(), nil
}

// StartUpload requests an asynchronous import of content as the
// languageID translation of resourceID and returns the job status URL.
func (c *Client) StartUpload(ctx context.Context, resourceID, languageID, content string) (string, error) {
	body := newJobRequest(typeUploads,
		jobAttributes{Content: content, ContentEncoding: "text", FileType: "default"},
		map[string]relationship{
			"language": {Data: identifier{ID: languageID, Type: "languages"}},
			"resource": {Data: identifier{ID: resourceID, Type: "resources"}},
		})
	return c.startJob(ctx, "/"+typeUploads, "initiating upload for "+resourceID, body)
}

// UploadStatus checks an import job once. A 200 response means done unless
// the job reports itself pending or processing; a failed job is an error.
// Other status codes mean "not yet".
func (c *Client) UploadStatus(ctx context.Context, url string) (bool, error) {
	res, err := c.r(ctx).Get(url)
	if err != nil {
		return false, fmt.Errorf("checking upload status: %w", err)
	}
	if res.StatusCode() != http.StatusOK {
		return false, nil
	}

	var doc jobDocument
	if err := json.Unmarshal(res.Body(), &doc); err != nil {
		return true, nil
	}
	switch strings.ToLower(doc.Data.Attributes.Status) {
	case "pending", "processing":
		return false, nil
	case "failed":
		return false, &JobFailedError{Errors: doc.Data.Attributes.Errors}
	default:
		return true, nil
	}
}

func (c *Client) startJob(ctx context.Context, path, op string, body jobRequest) (string, error) {
	var doc jobDocument
	res, err := c.r(ctx).
		SetHeader("Content-Type", jsonAPI).
		SetBody(body).
		SetResult(&doc).
		ForceContentType("application/json").
		Post(path)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if err := apiclient.Expect(op, res, http.StatusOK, http.StatusCreated, http.StatusAccepted); err != nil {
		return "", err
	}
	if doc.Data.Links.Self == "" {
		return "", errors.New(op + ": response has no links.self")
	}
	return doc.Data.Links.Self, nil
}
