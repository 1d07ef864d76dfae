package param

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ssmCall struct {
	Target    string
	Name      string `json:"Name"`
	Path      string `json:"Path"`
	NextToken string `json:"NextToken"`
}

func newSSMServer(t *testing.T, respond func(call ssmCall) any) (*ParameterStoreFetcher, *[]ssmCall) {
	t.Helper()
	var calls []ssmCall
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var call ssmCall
		if err := json.NewDecoder(r.Body).Decode(&call); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		call.Target = r.Header.Get("X-Amz-Target")
		calls = append(calls, call)

		w.Header().Set("Content-Type", "application/x-amz-json-1.1")
		_ = json.NewEncoder(w).Encode(respond(call))
	}))
	t.Cleanup(server.Close)

	client := ssm.New(ssm.Options{
		Region:       "us-east-1",
		Credentials:  aws.AnonymousCredentials{},
		BaseEndpoint: aws.String(server.URL),
	})
	return &ParameterStoreFetcher{client: client}, &calls
}

func TestParameterStoreFetch(t *testing.T) {
	fetcher, calls := newSSMServer(t, func(call ssmCall) any {
		return map[string]any{"Parameter": map[string]any{"Name": call.Name, "Value": "sk-secret"}}
	})

	v, err := fetcher.Fetch(context.Background(), "/stabilitybot/key")
	require.NoError(t, err)
	assert.Equal(t, "sk-secret", v)
	require.Len(t, *calls, 1)
	assert.Equal(t, "AmazonSSM.GetParameter", (*calls)[0].Target)
	assert.Equal(t, "/stabilitybot/key", (*calls)[0].Name)
}

func TestParameterStoreFetchAllPaginates(t *testing.T) {
	fetcher, calls := newSSMServer(t, func(call ssmCall) any {
		if call.NextToken == "" {
			return map[string]any{
				"Parameters": []map[string]any{{"Value": "sd3|a cat"}, {"Value": "a dog"}},
				"NextToken":  "page2",
			}
		}
		return map[string]any{"Parameters": []map[string]any{{"Value": "stable-core|a fox"}}}
	})

	values, err := fetcher.FetchAll(context.Background(), "/stabilitybot/prompts")
	require.NoError(t, err)
	assert.Equal(t, []string{"sd3|a cat", "a dog", "stable-core|a fox"}, values)

	require.Len(t, *calls, 2)
	assert.Equal(t, "AmazonSSM.GetParametersByPath", (*calls)[0].Target)
	assert.Equal(t, "/stabilitybot/prompts", (*calls)[0].Path)
	assert.Equal(t, "page2", (*calls)[1].NextToken)
}

func TestParameterStoreFetchAllListFallback(t *testing.T) {
	fetcher, calls := newSSMServer(t, func(call ssmCall) any {
		if call.Target == "AmazonSSM.GetParametersByPath" {
			return map[string]any{"Parameters": []any{}}
		}
		return map[string]any{"Parameter": map[string]any{"Name": call.Name, "Value": "sd3|a cat\n\n  a dog  \n"}}
	})

	values, err := fetcher.FetchAll(context.Background(), "/stabilitybot/prompts")
	require.NoError(t, err)
	assert.Equal(t, []string{"sd3|a cat", "a dog"}, values)

	require.Len(t, *calls, 2)
	assert.Equal(t, "AmazonSSM.GetParameter", (*calls)[1].Target)
	assert.Equal(t, "/stabilitybot/prompts", (*calls)[1].Name)
}

func TestParameterStoreFetchError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/x-amz-json-1.1")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"__type":"ParameterNotFound","message":"missing"}`))
	}))
	defer server.Close()

	client := ssm.New(ssm.Options{
		Region:       "us-east-1",
		Credentials:  aws.AnonymousCredentials{},
		BaseEndpoint: aws.String(server.URL),
	})
	_, err := (&ParameterStoreFetcher{client: client}).Fetch(context.Background(), "/missing")
	assert.ErrorContains(t, err, "fetching parameter /missing")
	assert.ErrorContains(t, err, "ParameterNotFound")
}
