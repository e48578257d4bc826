// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package command

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"testing"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	ads "github.com/aws/aws-sdk-go-v2/service/applicationdiscoveryservice"
	adstypes "github.com/aws/aws-sdk-go-v2/service/applicationdiscoveryservice/types"
	"github.com/aws/aws-sdk-go-v2/service/ecr"
	"github.com/aws/aws-sdk-go-v2/service/ecr/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/staranto/awsctlgo/internal/aws"
)

type pageIn struct {
	Token *string
	Size  *int32
}

type pageOut struct {
	Items []string
	Next  *string
}

var testPaging = Paging[pageIn, pageOut]{
	NextToken: func(o *pageOut) *string { return o.Next },
	SetToken:  func(i *pageIn, t *string) { i.Token = t },
}

// pager serves pages keyed by the request token, "" being the first.
func pager(pages map[string]pageOut, seen *[]string) func(context.Context, *pageIn) (*pageOut, error) {
	return func(_ context.Context, in *pageIn) (*pageOut, error) {
		tok := awsv2.ToString(in.Token)
		*seen = append(*seen, tok)
		p, ok := pages[tok]
		if !ok {
			return nil, errors.New("unexpected token " + tok)
		}
		return &p, nil
	}
}

func collectItems(items *[]string) func(*pageOut) (int, error) {
	return func(o *pageOut) (int, error) {
		*items = append(*items, o.Items...)
		return len(o.Items), nil
	}
}

func TestPaginate(t *testing.T) {
	pages := map[string]pageOut{
		"":   {Items: []string{"a", "b"}, Next: awsv2.String("t1")},
		"t1": {Items: []string{"c"}, Next: awsv2.String("t2")},
		"t2": {Items: []string{"d", "e"}},
	}

	tests := []struct {
		name      string
		po        PageOptions
		wantItems []string
		wantCalls []string
		wantNext  string
	}{
		{
			name:      "all pages",
			wantItems: []string{"a", "b", "c", "d", "e"},
			wantCalls: []string{"", "t1", "t2"},
		},
		{
			name:      "max items stops between pages",
			po:        PageOptions{MaxItems: 3},
			wantItems: []string{"a", "b", "c"},
			wantCalls: []string{"", "t1"},
			wantNext:  "t2",
		},
		{
			name:      "no auto iteration",
			po:        PageOptions{NoAutoIteration: true},
			wantItems: []string{"a", "b"},
			wantCalls: []string{""},
			wantNext:  "t1",
		},
		{
			name:      "starting token",
			po:        PageOptions{StartToken: "t1"},
			wantItems: []string{"c", "d", "e"},
			wantCalls: []string{"t1", "t2"},
		},
		{
			name:      "max items on the last page",
			po:        PageOptions{MaxItems: 5},
			wantItems: []string{"a", "b", "c", "d", "e"},
			wantCalls: []string{"", "t1", "t2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls, items []string
			next, err := Paginate(context.Background(), &pageIn{}, testPaging, tt.po, pager(pages, &calls), collectItems(&items))
			require.NoError(t, err)
			assert.Equal(t, tt.wantItems, items)
			assert.Equal(t, tt.wantCalls, calls)
			assert.Equal(t, tt.wantNext, awsv2.ToString(next))
		})
	}
}

func TestPaginate_PageSize(t *testing.T) {
	sized := testPaging
	sized.SetPageSize = func(i *pageIn, n int32) { i.Size = awsv2.Int32(n) }

	tests := []struct {
		name      string
		po        PageOptions
		wantSizes []int32
	}{
		{
			name:      "unset",
			wantSizes: []int32{0, 0, 0},
		},
		{
			name:      "page size only",
			po:        PageOptions{PageSize: 10},
			wantSizes: []int32{10, 10, 10},
		},
		{
			name:      "remaining items cap the page size",
			po:        PageOptions{PageSize: 2, MaxItems: 3},
			wantSizes: []int32{2, 1},
		},
		{
			name:      "max items without page size",
			po:        PageOptions{MaxItems: 4},
			wantSizes: []int32{4, 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sizes []int32
			call := func(_ context.Context, in *pageIn) (*pageOut, error) {
				sizes = append(sizes, awsv2.ToInt32(in.Size))
				out := &pageOut{Items: []string{"x", "y"}}
				if len(sizes) < 3 {
					out.Next = awsv2.String("t" + strconv.Itoa(len(sizes)))
				}
				return out, nil
			}
			var items []string
			_, err := Paginate(context.Background(), &pageIn{}, sized, tt.po, call, collectItems(&items))
			require.NoError(t, err)
			assert.Equal(t, tt.wantSizes, sizes)
		})
	}
}

func TestPaginate_DuplicateToken(t *testing.T) {
	pages := map[string]pageOut{
		"":   {Items: []string{"a"}, Next: awsv2.String("t1")},
		"t1": {Items: []string{"b"}, Next: awsv2.String("t1")},
	}
	var calls, items []string
	_, err := Paginate(context.Background(), &pageIn{}, testPaging, PageOptions{}, pager(pages, &calls), collectItems(&items))
	require.ErrorIs(t, err, ErrDuplicateToken)
	assert.Equal(t, []string{"a", "b"}, items)
}

func TestPaginate_StartTokenEchoed(t *testing.T) {
	pages := map[string]pageOut{
		"t1": {Items: []string{"a"}, Next: awsv2.String("t1")},
	}
	var calls, items []string
	_, err := Paginate(context.Background(), &pageIn{}, testPaging, PageOptions{StartToken: "t1"}, pager(pages, &calls), collectItems(&items))
	require.ErrorIs(t, err, ErrDuplicateToken)
}

func TestPaginate_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls, items []string
	_, err := Paginate(ctx, &pageIn{}, testPaging, PageOptions{}, pager(map[string]pageOut{}, &calls), collectItems(&items))
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, calls)
}

func TestPaginate_CallError(t *testing.T) {
	pages := map[string]pageOut{
		"": {Items: []string{"a"}, Next: awsv2.String("missing")},
	}
	var calls, items []string
	_, err := Paginate(context.Background(), &pageIn{}, testPaging, PageOptions{}, pager(pages, &calls), collectItems(&items))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected token missing")
}

func TestPaginate_EmptyTokenEnds(t *testing.T) {
	pages := map[string]pageOut{
		"": {Items: []string{"a"}, Next: awsv2.String("")},
	}
	var calls, items []string
	next, err := Paginate(context.Background(), &pageIn{}, testPaging, PageOptions{}, pager(pages, &calls), collectItems(&items))
	require.NoError(t, err)
	assert.Nil(t, next)
	assert.Equal(t, []string{""}, calls)
}

// repoNames is what the fake DescribeRepositories serves, two per page unless
// the request asks for fewer.  Tokens are "p" plus the offset to resume at.
var repoNames = []string{"api", "web", "db"}

func repoPages(t *testing.T, calls *int) *fakeECR {
	t.Helper()
	return &fakeECR{
		describeRepositories: func(in *ecr.DescribeRepositoriesInput) (*ecr.DescribeRepositoriesOutput, error) {
			*calls++
			offset := 0
			if tok := awsv2.ToString(in.NextToken); tok != "" {
				n, err := strconv.Atoi(strings.TrimPrefix(tok, "p"))
				if err != nil || n <= 0 || n >= len(repoNames) {
					t.Fatalf("unexpected token %q", tok)
				}
				offset = n
			}
			size := 2
			if in.MaxResults != nil {
				size = int(*in.MaxResults)
			}
			end := min(offset+size, len(repoNames))

			out := &ecr.DescribeRepositoriesOutput{}
			for _, name := range repoNames[offset:end] {
				out.Repositories = append(out.Repositories, types.Repository{RepositoryName: awsv2.String(name)})
			}
			if end < len(repoNames) {
				out.NextToken = awsv2.String("p" + strconv.Itoa(end))
			}
			return out, nil
		},
	}
}

func repositoryNames(raw string) []string {
	var names []string
	for _, n := range gjson.Get(raw, "#.RepositoryName").Array() {
		names = append(names, n.String())
	}
	return names
}

func TestRun_Pagination(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		wantNames []string
		wantCalls int
		wantNext  string
	}{
		{
			name:      "auto iteration",
			wantNames: []string{"api", "web", "db"},
			wantCalls: 2,
		},
		{
			name:      "max items",
			args:      []string{"--max-items", "1"},
			wantNames: []string{"api"},
			wantCalls: 1,
			wantNext:  "p1",
		},
		{
			name:      "max items across pages",
			args:      []string{"--max-items", "3", "--page-size", "2"},
			wantNames: []string{"api", "web", "db"},
			wantCalls: 2,
		},
		{
			name:      "page size",
			args:      []string{"--page-size", "1"},
			wantNames: []string{"api", "web", "db"},
			wantCalls: 3,
		},
		{
			name:      "single page",
			args:      []string{"--no-auto-iteration"},
			wantNames: []string{"api", "web"},
			wantCalls: 1,
			wantNext:  "p2",
		},
		{
			name:      "resume",
			args:      []string{"--next-token", "p2"},
			wantNames: []string{"db"},
			wantCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			c := &aws.Clients{ECR: repoPages(t, &calls)}

			args := append([]string{"ecr", "describe-repositories", "-o", "raw"}, tt.args...)
			stdout, stderr, err := runApp(t, c, args...)
			require.NoError(t, err)

			assert.Equal(t, tt.wantNames, repositoryNames(stdout))
			assert.Equal(t, tt.wantCalls, calls)
			if tt.wantNext != "" {
				assert.Contains(t, stderr, "NextToken: "+tt.wantNext)
			} else {
				assert.NotContains(t, stderr, "NextToken")
			}
		})
	}
}

func TestRun_MaxItemsResume(t *testing.T) {
	tokenLine := regexp.MustCompile(`NextToken: (\S+)`)

	for _, pageSize := range []string{"", "2"} {
		t.Run("page size "+pageSize, func(t *testing.T) {
			calls := 0
			c := &aws.Clients{ECR: repoPages(t, &calls)}

			var got []string
			base := []string{"ecr", "describe-repositories", "-o", "raw", "--max-items", "1"}
			if pageSize != "" {
				base = append(base, "--page-size", pageSize)
			}
			args := base
			for range repoNames {
				stdout, stderr, err := runApp(t, c, args...)
				require.NoError(t, err)
				got = append(got, repositoryNames(stdout)...)

				m := tokenLine.FindStringSubmatch(stderr)
				if m == nil {
					break
				}
				args = append(append([]string{}, base...), "--next-token", m[1])
			}
			assert.Equal(t, repoNames, got)
		})
	}
}

func TestRun_MaxItemsWithoutPageSize(t *testing.T) {
	c := &aws.Clients{Discovery: &fakeDiscovery{
		describeAgents: func(in *ads.DescribeAgentsInput) (*ads.DescribeAgentsOutput, error) {
			return &ads.DescribeAgentsOutput{
				AgentsInfo: []adstypes.AgentInfo{
					{AgentId: awsv2.String("a-1")},
					{AgentId: awsv2.String("a-2")},
				},
				NextToken: awsv2.String("n2"),
			}, nil
		},
	}}

	stdout, stderr, err := runApp(t, c, "ads", "describe-agents", "-o", "raw", "--max-items", "1")
	require.NoError(t, err)
	assert.JSONEq(t, `["a-1"]`, gjson.Get(stdout, "#.AgentId").Raw)
	assert.NotContains(t, stderr, "NextToken")
	assert.Contains(t, stderr, "1 items beyond --max-items were skipped")
}

func TestRun_PageSizeRange(t *testing.T) {
	for _, size := range []string{"0", "4294967297"} {
		t.Run(size, func(t *testing.T) {
			calls := 0
			c := &aws.Clients{ECR: repoPages(t, &calls)}
			_, _, err := runApp(t, c, "ecr", "describe-repositories", "--page-size", size)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "must be between 1 and 2147483647")
			assert.Zero(t, calls)
		})
	}
}

func TestRun_Select(t *testing.T) {
	calls := 0
	c := &aws.Clients{ECR: repoPages(t, &calls)}

	t.Run("whole response per page", func(t *testing.T) {
		stdout, _, err := runApp(t, c, "ecr", "describe-repositories", "-o", "raw", "--select", "*")
		require.NoError(t, err)
		pages := gjson.Parse(stdout).Array()
		require.Len(t, pages, 2)
		assert.Equal(t, "p2", pages[0].Get("NextToken").String())
		assert.False(t, pages[0].Get("ResultMetadata").Exists())
	})

	t.Run("nested path", func(t *testing.T) {
		stdout, _, err := runApp(t, c, "ecr", "describe-repositories", "-o", "raw", "--select", "Repositories.RepositoryName")
		require.NoError(t, err)
		assert.JSONEq(t, `["api","web","db"]`, stdout)
	})

	t.Run("user attrs extend the defaults", func(t *testing.T) {
		stdout, _, err := runApp(t, c, "ecr", "describe-repositories", "-o", "json", "-a", "RepositoryName:name,RepositoryUri:uri,RegistryId")
		require.NoError(t, err)
		rows := gjson.Parse(stdout).Array()
		require.Len(t, rows, 3)
		assert.JSONEq(t, `{"name":"api","uri":null,"ImageTagMutability":"","CreatedAt":null,"RegistryId":null}`, rows[0].Raw)

		var keys []string
		rows[0].ForEach(func(k, _ gjson.Result) bool {
			keys = append(keys, k.String())
			return true
		})
		assert.Equal(t, []string{"name", "uri", "ImageTagMutability", "CreatedAt", "RegistryId"}, keys)
	})

	t.Run("bang hides a default", func(t *testing.T) {
		stdout, _, err := runApp(t, c, "ecr", "describe-repositories", "-o", "json", "-a", "RepositoryName:name,!RepositoryUri,!ImageTagMutability,!CreatedAt")
		require.NoError(t, err)
		assert.JSONEq(t, `[{"name":"api"},{"name":"web"},{"name":"db"}]`, stdout)
	})

	t.Run("filter and sort", func(t *testing.T) {
		stdout, _, err := runApp(t, c, "ecr", "describe-repositories", "-o", "json", "-a", "!RepositoryUri,!ImageTagMutability,!CreatedAt",
			"-f", "RepositoryName!^d", "-s", "-RepositoryName")
		require.NoError(t, err)
		assert.JSONEq(t, `[{"RepositoryName":"web"},{"RepositoryName":"api"}]`, stdout)
	})
}

func TestRun_PassThrough(t *testing.T) {
	var got *ecr.TagResourceInput
	c := &aws.Clients{ECR: &fakeECR{
		tagResource: func(in *ecr.TagResourceInput) (*ecr.TagResourceOutput, error) {
			got = in
			return &ecr.TagResourceOutput{}, nil
		},
	}}

	arn := "arn:aws:ecr:us-east-1:123456789012:repository/web"
	stdout, _, err := runApp(t, c, "ecr", "tag-resource", "-o", "raw", "--resource-arn", arn, "--tag", "team=core", "--tag", "env=")
	require.NoError(t, err)
	assert.JSONEq(t, `["`+arn+`"]`, stdout)

	require.NotNil(t, got)
	require.Len(t, got.Tags, 2)
	assert.Equal(t, "team", awsv2.ToString(got.Tags[0].Key))
	assert.Equal(t, "", awsv2.ToString(got.Tags[1].Value))
}

func TestRun_PassThroughUnknown(t *testing.T) {
	c := &aws.Clients{ECR: &fakeECR{
		tagResource: func(*ecr.TagResourceInput) (*ecr.TagResourceOutput, error) {
			return &ecr.TagResourceOutput{}, nil
		},
	}}
	_, _, err := runApp(t, c, "ecr", "tag-resource", "--resource-arn", "arn", "--tag", "a=b", "--select", "^Nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown parameter")
}

func TestRun_ErrorEnvelope(t *testing.T) {
	c := &aws.Clients{
		Region:  "us-east-1",
		Profile: "dev",
		ECR: &fakeECR{
			describeImages: func(*ecr.DescribeImagesInput) (*ecr.DescribeImagesOutput, error) {
				return nil, &types.RepositoryNotFoundException{Message: awsv2.String("repository nope not found")}
			},
		},
	}

	_, _, err := runApp(t, c, "ecr", "describe-images", "-n", "nope")
	require.Error(t, err)

	var oe *aws.OperationError
	require.ErrorAs(t, err, &oe)
	assert.Equal(t, "RepositoryNotFoundException", oe.Code)
	assert.Equal(t, "DescribeImages", oe.Operation)
	assert.Equal(t, "repository nope", oe.Resource)
	assert.Contains(t, err.Error(), "region us-east-1, profile dev")
}

func TestRun_Confirm(t *testing.T) {
	calls := 0
	c := &aws.Clients{ECR: &fakeECR{
		batchDeleteImage: func(in *ecr.BatchDeleteImageInput) (*ecr.BatchDeleteImageOutput, error) {
			calls++
			return &ecr.BatchDeleteImageOutput{ImageIds: in.ImageIds}, nil
		},
	}}

	t.Run("no terminal", func(t *testing.T) {
		_, _, err := runApp(t, c, "ecr", "batch-delete-image", "-n", "web", "--image", "v1")
		require.ErrorIs(t, err, ErrNotConfirmed)
		assert.Contains(t, err.Error(), "1 image(s) from repository web")
		assert.Zero(t, calls)
	})

	t.Run("forced", func(t *testing.T) {
		stdout, _, err := runApp(t, c, "ecr", "batch-delete-image", "-n", "web", "--image", "v1", "--force", "-o", "raw")
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
		assert.JSONEq(t, `[{"ImageDigest":null,"ImageTag":"v1"}]`, stdout)
	})
}

func TestRun_BindErrorBeforeCall(t *testing.T) {
	c := &aws.Clients{ECR: &fakeECR{}}
	_, _, err := runApp(t, c, "ecr", "describe-images")
	require.ErrorIs(t, err, ErrInvalidValue)
	assert.Contains(t, err.Error(), "--repository-name is required")
}

func TestRun_Schema(t *testing.T) {
	stdout, _, err := runApp(t, &aws.Clients{}, "ecr", "describe-images", "--schema")
	require.NoError(t, err)
	assert.Contains(t, stdout, "ImageDigest")
	assert.Contains(t, stdout, "ImagePushedAt")
}

func TestRun_TldrSkipsClients(t *testing.T) {
	stdout, _, err := runApp(t, nil, "ecr", "describe-images", "--tldr")
	require.NoError(t, err)
	assert.NotEmpty(t, stdout)
}

func TestWhatIf(t *testing.T) {
	const current = `{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Action":"ecr:*"}]}`
	const proposed = `{"Version":"2012-10-17","Statement":[{"Effect":"Deny","Action":"ecr:*"}]}`

	tests := []struct {
		name      string
		current   func() (*ecr.GetRepositoryPolicyOutput, error)
		policy    string
		want      string
		wantError bool
	}{
		{
			name: "unchanged",
			current: func() (*ecr.GetRepositoryPolicyOutput, error) {
				return &ecr.GetRepositoryPolicyOutput{PolicyText: awsv2.String(current)}, nil
			},
			policy: current,
			want:   "no changes",
		},
		{
			name: "changed",
			current: func() (*ecr.GetRepositoryPolicyOutput, error) {
				return &ecr.GetRepositoryPolicyOutput{PolicyText: awsv2.String(current)}, nil
			},
			policy: proposed,
			want:   "Deny",
		},
		{
			name: "no policy yet",
			current: func() (*ecr.GetRepositoryPolicyOutput, error) {
				return nil, &types.RepositoryPolicyNotFoundException{Message: awsv2.String("none")}
			},
			policy: proposed,
			want:   "Deny",
		},
		{
			name: "lookup fails",
			current: func() (*ecr.GetRepositoryPolicyOutput, error) {
				return nil, &types.RepositoryNotFoundException{Message: awsv2.String("gone")}
			},
			policy:    proposed,
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &aws.Clients{ECR: &fakeECR{
				getRepositoryPolicy: func(*ecr.GetRepositoryPolicyInput) (*ecr.GetRepositoryPolicyOutput, error) {
					return tt.current()
				},
				setRepositoryPolicy: func(*ecr.SetRepositoryPolicyInput) (*ecr.SetRepositoryPolicyOutput, error) {
					t.Fatal("what-if must not apply the policy")
					return nil, nil
				},
			}}

			stdout, _, err := runApp(t, c, "ecr", "set-repository-policy", "-n", "web", "--policy-text", tt.policy, "--what-if")
			if tt.wantError {
				var oe *aws.OperationError
				require.ErrorAs(t, err, &oe)
				assert.Equal(t, "RepositoryNotFoundException", oe.Code)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, stdout, tt.want)
		})
	}
}

func TestDeprecatedWarning(t *testing.T) {
	c := &aws.Clients{Discovery: &fakeDiscovery{
		exportConfigurations: func(*ads.ExportConfigurationsInput) (*ads.ExportConfigurationsOutput, error) {
			return &ads.ExportConfigurationsOutput{ExportId: awsv2.String("exp-1")}, nil
		},
	}}

	stdout, stderr, err := runApp(t, c, "ads", "export-configurations", "-o", "raw")
	require.NoError(t, err)
	assert.Contains(t, stderr, "warning: ads export-configurations is deprecated")
	assert.JSONEq(t, `["exp-1"]`, stdout)
}
