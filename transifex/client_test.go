package transifex

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minios-linux/transync/apiclient"
)

const (
	testBase    = "https://rest.api.transifex.com"
	testProject = "o:org:p:proj"
)

func newTestHTTP(t *testing.T) *resty.Client {
	t.Helper()
	c := apiclient.New(apiclient.Options{BaseURL: testBase})
	httpmock.ActivateNonDefault(c.GetClient())
	t.Cleanup(httpmock.DeactivateAndReset)
	return c
}

func jsonDecode(req *http.Request, v any) error {
	return json.NewDecoder(req.Body).Decode(v)
}

func resourcesBody(next any, ids ...string) map[string]any {
	data := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		data = append(data, map[string]any{"id": id, "type": "resources"})
	}
	return map[string]any{"data": data, "links": map[string]any{"next": next}}
}

func jobBody(self, status string) map[string]any {
	return map[string]any{"data": map[string]any{
		"id":         "job",
		"attributes": map[string]any{"status": status},
		"links":      map[string]any{"self": self},
	}}
}

func TestResourceSlug(t *testing.T) {
	assert.Equal(t, "items", Resource{ID: "o:org:p:proj:r:items"}.Slug())
	assert.Equal(t, "bare", Resource{ID: "bare"}.Slug())
}

func TestListResourcesFollowsPagination(t *testing.T) {
	client := NewClient(newTestHTTP(t), "tok")

	next := testBase + "/resources?filter%5Bproject%5D=o%3Aorg%3Ap%3Aproj&page%5Bcursor%5D=2"
	httpmock.RegisterResponder("GET", testBase+"/resources", func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "Bearer tok", req.Header.Get("Authorization"))
		assert.Equal(t, jsonAPI, req.Header.Get("Accept"))
		assert.Equal(t, testProject, req.URL.Query().Get("filter[project]"))
		if req.URL.Query().Get("page[cursor]") == "" {
			return httpmock.NewJsonResponse(200, resourcesBody(next, testProject+":r:items"))
		}
		return httpmock.NewJsonResponse(200, resourcesBody(nil, testProject+":r:actors"))
	})

	resources, err := client.ListResources(context.Background(), testProject)
	require.NoError(t, err)
	require.Len(t, resources, 2)
	assert.Equal(t, "items", resources[0].Slug())
	assert.Equal(t, "actors", resources[1].Slug())
	assert.Equal(t, 2, httpmock.GetTotalCallCount())
}

func TestListResourcesStatusError(t *testing.T) {
	client := NewClient(newTestHTTP(t), "bad")
	httpmock.RegisterResponder("GET", testBase+"/resources", httpmock.NewStringResponder(401, `{"errors":[]}`))

	_, err := client.ListResources(context.Background(), testProject)
	var statusErr *apiclient.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, 401, statusErr.StatusCode)
}

func TestStartDownloadSendsJobRequest(t *testing.T) {
	client := NewClient(newTestHTTP(t), "tok")
	self := testBase + "/resource_strings_async_downloads/job1"

	httpmock.RegisterResponder("POST", testBase+"/resource_strings_async_downloads", func(req *http.Request) (*http.Response, error) {
		body, err := io.ReadAll(req.Body)
		require.NoError(t, err)
		assert.Equal(t, jsonAPI, req.Header.Get("Content-Type"))
		assert.JSONEq(t, `{"data":{
			"attributes":{"content_encoding":"text","file_type":"default"},
			"relationships":{"resource":{"data":{"id":"o:org:p:proj:r:items","type":"resources"}}},
			"type":"resource_strings_async_downloads"}}`, string(body))
		return httpmock.NewJsonResponse(202, jobBody(self, "pending"))
	})

	link, err := client.StartDownload(context.Background(), testProject+":r:items")
	require.NoError(t, err)
	assert.Equal(t, self, link)
}

func TestStartDownloadWithoutLink(t *testing.T) {
	client := NewClient(newTestHTTP(t), "tok")
	httpmock.RegisterResponder("POST", testBase+"/resource_strings_async_downloads",
		httpmock.NewStringResponder(202, `{"data":{}}`))

	_, err := client.StartDownload(context.Background(), testProject+":r:items")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "links.self")
}

func TestStartUploadSendsContentAndLanguage(t *testing.T) {
	client := NewClient(newTestHTTP(t), "tok")
	self := testBase + "/resource_translations_async_uploads/job2"

	httpmock.RegisterResponder("POST", testBase+"/resource_translations_async_uploads", func(req *http.Request) (*http.Response, error) {
		body, err := io.ReadAll(req.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"data":{
			"attributes":{"content":"a=b\n","content_encoding":"text","file_type":"default"},
			"relationships":{
				"language":{"data":{"id":"l:zh-Hans","type":"languages"}},
				"resource":{"data":{"id":"o:org:p:proj:r:items","type":"resources"}}},
			"type":"resource_translations_async_uploads"}}`, string(body))
		return httpmock.NewJsonResponse(201, jobBody(self, "pending"))
	})

	link, err := client.StartUpload(context.Background(), testProject+":r:items", "l:zh-Hans", "a=b\n")
	require.NoError(t, err)
	assert.Equal(t, self, link)
}

func TestDownload(t *testing.T) {
	client := NewClient(newTestHTTP(t), "tok")
	url := testBase + "/resource_strings_async_downloads/job1"

	httpmock.RegisterResponder("GET", url, httpmock.NewStringResponder(200, "a=Apple\nb=Banana\n"))
	content, err := client.Download(context.Background(), url)
	require.NoError(t, err)
	assert.Equal(t, "a=Apple\nb=Banana\n", content)

	httpmock.RegisterResponder("GET", url, httpmock.NewStringResponder(404, ""))
	_, err = client.Download(context.Background(), url)
	var statusErr *apiclient.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, 404, statusErr.StatusCode)
}

func TestUploadStatus(t *testing.T) {
	client := NewClient(newTestHTTP(t), "tok")
	url := testBase + "/resource_translations_async_uploads/job2"

	cases := []struct {
		name   string
		status int
		body   string
		done   bool
		failed bool
	}{
		{name: "not ready", status: 404, body: "", done: false},
		{name: "processing", status: 200, body: `{"data":{"attributes":{"status":"processing"}}}`, done: false},
		{name: "pending", status: 200, body: `{"data":{"attributes":{"status":"pending"}}}`, done: false},
		{name: "succeeded", status: 200, body: `{"data":{"attributes":{"status":"succeeded"}}}`, done: true},
		{name: "empty body", status: 200, body: "", done: true},
		{name: "failed", status: 200, body: `{"data":{"attributes":{"status":"failed","errors":[{"code":"parse_error","detail":"bad line 3"}]}}}`, failed: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			httpmock.RegisterResponder("GET", url, httpmock.NewStringResponder(tc.status, tc.body))
			done, err := client.UploadStatus(context.Background(), url)
			if tc.failed {
				var jobErr *JobFailedError
				require.ErrorAs(t, err, &jobErr)
				assert.Contains(t, err.Error(), "bad line 3")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.done, done)
		})
	}
}
