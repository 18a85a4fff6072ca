package githubapi_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"go.uber.org/zap/zapcore"

	"github.com/temirov/ghflow/internal/githubapi"
)

const (
	testTokenConstant      = "test-token"
	testOwnerConstant      = "octocat"
	testRepositoryConstant = "hello-world"
	authorizationHeader    = "Authorization"
	expectedAuthorization  = "Bearer test-token"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Body   map[string]any
}

func newTestServer(testInstance *testing.T, handler func(writer http.ResponseWriter, request *http.Request)) (*httptest.Server, *[]recordedRequest) {
	testInstance.Helper()
	var requests []recordedRequest
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		require.Equal(testInstance, expectedAuthorization, request.Header.Get(authorizationHeader))

		recorded := recordedRequest{Method: request.Method, Path: request.URL.Path, Query: request.URL.RawQuery}
		payload, readError := io.ReadAll(request.Body)
		require.NoError(testInstance, readError)
		if len(payload) > 0 {
			require.NoError(testInstance, json.Unmarshal(payload, &recorded.Body))
		}
		requests = append(requests, recorded)

		writer.Header().Set("Content-Type", "application/json")
		handler(writer, request)
	}))
	testInstance.Cleanup(server.Close)
	return server, &requests
}

func newTestClient(testInstance *testing.T, server *httptest.Server, options ...githubapi.ClientOption) *githubapi.Client {
	testInstance.Helper()
	clientOptions := append([]githubapi.ClientOption{githubapi.WithBaseURL(server.URL)}, options...)
	client, creationError := githubapi.NewClient(testTokenConstant, testOwnerConstant, testRepositoryConstant, clientOptions...)
	require.NoError(testInstance, creationError)
	return client
}

func TestNewClientValidatesInputs(testInstance *testing.T) {
	testCases := []struct {
		name          string
		token         string
		owner         string
		repository    string
		expectedError error
	}{
		{name: "missing_token", token: " ", owner: testOwnerConstant, repository: testRepositoryConstant, expectedError: githubapi.ErrTokenRequired},
		{name: "missing_owner", token: testTokenConstant, owner: "", repository: testRepositoryConstant, expectedError: githubapi.ErrRepositoryRequired},
		{name: "missing_repository", token: testTokenConstant, owner: testOwnerConstant, repository: "", expectedError: githubapi.ErrRepositoryRequired},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			client, creationError := githubapi.NewClient(testCase.token, testCase.owner, testCase.repository)
			require.ErrorIs(testInstance, creationError, testCase.expectedError)
			require.Nil(testInstance, client)
		})
	}
}

func TestClientListLabelsFollowsPagination(testInstance *testing.T) {
	var serverURL string
	server, requests := newTestServer(testInstance, func(writer http.ResponseWriter, request *http.Request) {
		if request.URL.Query().Get("page") == "2" {
			fmt.Fprint(writer, `[{"name":"p1","color":"ff9f1c"}]`)
			return
		}
		writer.Header().Set("Link", fmt.Sprintf(`<%s/repos/octocat/hello-world/labels?page=2>; rel="next"`, serverURL))
		fmt.Fprint(writer, `[{"name":"type:bug","color":"d73a4a","description":"Something broke"}]`)
	})
	serverURL = server.URL
	client := newTestClient(testInstance, server)

	labels, listError := client.ListLabels(context.Background())
	require.NoError(testInstance, listError)
	require.Equal(testInstance, []githubapi.Label{
		{Name: "type:bug", Color: "d73a4a", Description: "Something broke"},
		{Name: "p1", Color: "ff9f1c"},
	}, labels)
	require.Len(testInstance, *requests, 2)
	require.Equal(testInstance, "/repos/octocat/hello-world/labels", (*requests)[0].Path)
}

func TestClientCreateIssueSendsLabels(testInstance *testing.T) {
	server, requests := newTestServer(testInstance, func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusCreated)
		fmt.Fprint(writer, `{"number":42,"node_id":"I_42","title":"Login fails","state":"open","labels":[{"name":"type:bug"}],"html_url":"https://github.com/octocat/hello-world/issues/42"}`)
	})
	client := newTestClient(testInstance, server)

	issue, createError := client.CreateIssue(context.Background(), githubapi.IssueRequest{
		Title:  " Login fails ",
		Body:   "Steps to reproduce",
		Labels: []string{"type:bug"},
	})
	require.NoError(testInstance, createError)
	require.Equal(testInstance, 42, issue.Number)
	require.Equal(testInstance, "I_42", issue.NodeID)
	require.Equal(testInstance, []string{"type:bug"}, issue.Labels)

	require.Len(testInstance, *requests, 1)
	recorded := (*requests)[0]
	require.Equal(testInstance, http.MethodPost, recorded.Method)
	require.Equal(testInstance, "/repos/octocat/hello-world/issues", recorded.Path)
	require.Equal(testInstance, "Login fails", recorded.Body["title"])
	require.Equal(testInstance, []any{"type:bug"}, recorded.Body["labels"])
}

func TestClientCreateIssueRequiresTitle(testInstance *testing.T) {
	server, requests := newTestServer(testInstance, func(writer http.ResponseWriter, request *http.Request) {})
	client := newTestClient(testInstance, server)

	_, createError := client.CreateIssue(context.Background(), githubapi.IssueRequest{Title: "  "})
	require.ErrorAs(testInstance, createError, &githubapi.InvalidInputError{})
	require.Empty(testInstance, *requests)
}

func TestClientListIssuesSkipsPullRequestsAndHonorsLimit(testInstance *testing.T) {
	server, requests := newTestServer(testInstance, func(writer http.ResponseWriter, request *http.Request) {
		fmt.Fprint(writer, `[
			{"number":1,"title":"first"},
			{"number":2,"title":"a pull request","pull_request":{"url":"https://api.github.com/repos/octocat/hello-world/pulls/2"}},
			{"number":3,"title":"second"},
			{"number":4,"title":"third"}
		]`)
	})
	client := newTestClient(testInstance, server)

	issues, listError := client.ListIssues(context.Background(), githubapi.ListOptions{Labels: []string{"type:bug"}, Limit: 2})
	require.NoError(testInstance, listError)
	require.Len(testInstance, issues, 2)
	require.Equal(testInstance, 1, issues[0].Number)
	require.Equal(testInstance, 3, issues[1].Number)

	require.Contains(testInstance, (*requests)[0].Query, "state=open")
	require.Contains(testInstance, (*requests)[0].Query, "labels=type%3Abug")
}

func TestClientCloseIssueAndComment(testInstance *testing.T) {
	server, requests := newTestServer(testInstance, func(writer http.ResponseWriter, request *http.Request) {
		fmt.Fprint(writer, `{}`)
	})
	client := newTestClient(testInstance, server)

	require.NoError(testInstance, client.AddComment(context.Background(), 7, "Done in #8"))
	require.NoError(testInstance, client.CloseIssue(context.Background(), 7))

	require.Len(testInstance, *requests, 2)
	require.Equal(testInstance, "/repos/octocat/hello-world/issues/7/comments", (*requests)[0].Path)
	require.Equal(testInstance, "Done in #8", (*requests)[0].Body["body"])
	require.Equal(testInstance, http.MethodPatch, (*requests)[1].Method)
	require.Equal(testInstance, "closed", (*requests)[1].Body["state"])
}

func TestClientPullRequestLifecycle(testInstance *testing.T) {
	server, requests := newTestServer(testInstance, func(writer http.ResponseWriter, request *http.Request) {
		switch {
		case request.Method == http.MethodPost && request.URL.Path == "/repos/octocat/hello-world/pulls":
			writer.WriteHeader(http.StatusCreated)
			fmt.Fprint(writer, `{"number":9,"node_id":"PR_9","title":"feat: login","state":"open","head":{"ref":"feat/12-login"},"base":{"ref":"main"}}`)
		case request.URL.Path == "/repos/octocat/hello-world/pulls/9/reviews" && request.Method == http.MethodGet:
			fmt.Fprint(writer, `[{"state":"COMMENTED"},{"state":"APPROVED"}]`)
		case request.URL.Path == "/repos/octocat/hello-world/pulls/9/reviews":
			fmt.Fprint(writer, `{"id":1}`)
		case request.URL.Path == "/repos/octocat/hello-world/pulls/9/merge":
			fmt.Fprint(writer, `{"merged":true,"sha":"abc123","message":"Pull Request successfully merged"}`)
		case request.URL.Path == "/repos/octocat/hello-world/git/refs/heads/feat/12-login":
			writer.WriteHeader(http.StatusNoContent)
		default:
			writer.WriteHeader(http.StatusNotFound)
			fmt.Fprint(writer, `{"message":"Not Found"}`)
		}
	})
	client := newTestClient(testInstance, server)
	executionContext := context.Background()

	pullRequest, createError := client.CreatePullRequest(executionContext, githubapi.PullRequestRequest{
		Title: "feat: login",
		Body:  "Fixes #12",
		Head:  "feat/12-login",
		Base:  "main",
	})
	require.NoError(testInstance, createError)
	require.Equal(testInstance, 9, pullRequest.Number)
	require.Equal(testInstance, "feat/12-login", pullRequest.HeadBranch)
	require.Equal(testInstance, githubapi.PullRequestStateOpen, pullRequest.State)

	require.NoError(testInstance, client.CreateReview(executionContext, 9, githubapi.ReviewEventApprove, "LGTM!"))

	approved, approvalError := client.IsApproved(executionContext, 9)
	require.NoError(testInstance, approvalError)
	require.True(testInstance, approved)

	mergeResult, mergeError := client.MergePullRequest(executionContext, 9, githubapi.MergeMethodSquash)
	require.NoError(testInstance, mergeError)
	require.True(testInstance, mergeResult.Merged)
	require.Equal(testInstance, "abc123", mergeResult.SHA)

	require.NoError(testInstance, client.DeleteBranch(executionContext, "feat/12-login"))

	var reviewBody, mergeBody map[string]any
	for _, recorded := range *requests {
		switch {
		case recorded.Method == http.MethodPost && recorded.Path == "/repos/octocat/hello-world/pulls/9/reviews":
			reviewBody = recorded.Body
		case recorded.Path == "/repos/octocat/hello-world/pulls/9/merge":
			mergeBody = recorded.Body
		}
	}
	require.Equal(testInstance, "APPROVE", reviewBody["event"])
	require.Equal(testInstance, "LGTM!", reviewBody["body"])
	require.Equal(testInstance, "squash", mergeBody["merge_method"])
}

func TestClientMergedPullRequestState(testInstance *testing.T) {
	server, _ := newTestServer(testInstance, func(writer http.ResponseWriter, request *http.Request) {
		fmt.Fprint(writer, `{"number":5,"state":"closed","merged":true}`)
	})
	client := newTestClient(testInstance, server)

	pullRequest, getError := client.GetPullRequest(context.Background(), 5)
	require.NoError(testInstance, getError)
	require.Equal(testInstance, githubapi.PullRequestStateMerged, pullRequest.State)
}

func TestClientFileExists(testInstance *testing.T) {
	testCases := []struct {
		name           string
		statusCode     int
		body           string
		expectedExists bool
		expectError    bool
	}{
		{name: "present", statusCode: http.StatusOK, body: `{"type":"file","name":"bug.md","path":".github/ISSUE_TEMPLATE/bug.md"}`, expectedExists: true},
		{name: "missing", statusCode: http.StatusNotFound, body: `{"message":"Not Found"}`, expectedExists: false},
		{name: "server_error", statusCode: http.StatusInternalServerError, body: `{"message":"boom"}`, expectError: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			server, _ := newTestServer(testInstance, func(writer http.ResponseWriter, request *http.Request) {
				writer.WriteHeader(testCase.statusCode)
				fmt.Fprint(writer, testCase.body)
			})
			client := newTestClient(testInstance, server)

			exists, existsError := client.FileExists(context.Background(), ".github/ISSUE_TEMPLATE/bug.md")
			if testCase.expectError {
				require.Error(testInstance, existsError)
				require.False(testInstance, githubapi.IsNotFound(existsError))
				return
			}
			require.NoError(testInstance, existsError)
			require.Equal(testInstance, testCase.expectedExists, exists)
		})
	}
}

func TestClientCreateFileEncodesContent(testInstance *testing.T) {
	server, requests := newTestServer(testInstance, func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusCreated)
		fmt.Fprint(writer, `{"content":{"path":".github/PULL_REQUEST_TEMPLATE.md"}}`)
	})
	client := newTestClient(testInstance, server)

	require.NoError(testInstance, client.CreateFile(context.Background(), ".github/PULL_REQUEST_TEMPLATE.md", "chore: add pull request template", []byte("## Summary")))

	recorded := (*requests)[0]
	require.Equal(testInstance, http.MethodPut, recorded.Method)
	require.Equal(testInstance, "/repos/octocat/hello-world/contents/.github/PULL_REQUEST_TEMPLATE.md", recorded.Path)
	require.Equal(testInstance, "chore: add pull request template", recorded.Body["message"])
	require.Equal(testInstance, "IyMgU3VtbWFyeQ==", recorded.Body["content"])
}

func TestClientRequestErrorsAreWrapped(testInstance *testing.T) {
	server, _ := newTestServer(testInstance, func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusNotFound)
		fmt.Fprint(writer, `{"message":"Not Found"}`)
	})
	client := newTestClient(testInstance, server)

	_, getError := client.GetIssue(context.Background(), 404)
	require.Error(testInstance, getError)
	require.True(testInstance, githubapi.IsNotFound(getError))

	var requestError githubapi.RequestError
	require.ErrorAs(testInstance, getError, &requestError)
	require.Equal(testInstance, "get issue", requestError.Operation)
}

func TestClientLogsRequests(testInstance *testing.T) {
	observedCore, observedLogs := observer.New(zapcore.DebugLevel)
	server, _ := newTestServer(testInstance, func(writer http.ResponseWriter, request *http.Request) {
		writer.Header().Set("X-RateLimit-Remaining", "4999")
		fmt.Fprint(writer, `{"login":"octocat"}`)
	})
	client := newTestClient(testInstance, server, githubapi.WithLogger(zap.New(observedCore)))

	login, loginError := client.AuthenticatedUser(context.Background())
	require.NoError(testInstance, loginError)
	require.Equal(testInstance, "octocat", login)

	requestEntries := observedLogs.FilterMessage("github api request").All()
	require.Len(testInstance, requestEntries, 1)
	contextMap := requestEntries[0].ContextMap()
	require.Equal(testInstance, http.MethodGet, contextMap["method"])
	require.Equal(testInstance, int64(http.StatusOK), contextMap["status_code"])
	require.Equal(testInstance, "4999", contextMap["rate_limit_remaining"])
}
