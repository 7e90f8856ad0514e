// Package paratranz talks to the ParaTranz HTTP API: bulk artifact export
// and per-file replace uploads.
package paratranz

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/go-resty/resty/v2"

	"github.com/minios-linux/transync/apiclient"
)

// File is one entry of a project's file listing. Name may contain folders.
type File struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Client issues authenticated ParaTranz requests. The token is sent as the
// bare Authorization header value.
type Client struct {
	http  *resty.Client
	token string
}

func NewClient(http *resty.Client, token string) *Client {
	return &Client{http: http, token: token}
}

func (c *Client) r(ctx context.Context) *resty.Request {
	return c.http.R().
		SetContext(ctx).
		SetHeader("Authorization", c.token)
}

func projectPath(projectID int) string {
	return "/projects/" + strconv.Itoa(projectID)
}

// DownloadArtifacts fetches the project's artifact zip.
func (c *Client) DownloadArtifacts(ctx context.Context, projectID int) ([]byte, error) {
	res, err := c.r(ctx).Get(projectPath(projectID) + "/artifacts/download")
	if err != nil {
		return nil, fmt.Errorf("downloading artifacts: %w", err)
	}
	if err := apiclient.Expect("downloading artifacts", res); err != nil {
		return nil, err
	}
	return res.Body(), nil
}

// ListFiles returns the project's remote files.
func (c *Client) ListFiles(ctx context.Context, projectID int) ([]File, error) {
	var files []File
	res, err := c.r(ctx).
		SetResult(&files).
		ForceContentType("application/json").
		Get(projectPath(projectID) + "/files")
	if err != nil {
		return nil, fmt.Errorf("fetching file list: %w", err)
	}
	if err := apiclient.Expect("fetching file list", res); err != nil {
		return nil, err
	}
	return files, nil
}

// UploadFile replaces the content of remote file fileID with r, sent as
// the multipart field "file".
func (c *Client) UploadFile(ctx context.Context, projectID, fileID int, name string, r io.Reader) error {
	op := "uploading " + name
	res, err := c.r(ctx).
		SetFileReader("file", name, r).
		Post(fmt.Sprintf("%s/files/%d", projectPath(projectID), fileID))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return apiclient.Expect(op, res)
}
