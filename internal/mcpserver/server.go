// Package mcpserver exposes validation, resolution and lookup of a wildcard
// dataset as MCP tools.
package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/agentic-research/wildcards/api"
	"github.com/agentic-research/wildcards/internal/grammar"
	"github.com/agentic-research/wildcards/internal/ingest"
	"github.com/agentic-research/wildcards/internal/report"
	"github.com/agentic-research/wildcards/internal/resolver"
	"github.com/agentic-research/wildcards/internal/tree"
	"github.com/agentic-research/wildcards/internal/validator"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

// maxResolveCount bounds the count argument of resolve_expression.
const maxResolveCount = 100

// Tools holds the dataset the tools read when a call does not name one.
type Tools struct {
	store    *tree.Store
	log      *zap.Logger
	maxDepth int
}

func NewTools(store *tree.Store, log *zap.Logger, maxDepth int) *Tools {
	if log == nil {
		log = zap.NewNop()
	}
	if maxDepth <= 0 {
		maxDepth = resolver.DefaultMaxDepth
	}
	return &Tools{store: store, log: log, maxDepth: maxDepth}
}

// New builds the MCP server with every tool registered.
func New(t *Tools, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"wildcards",
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(instructions),
	)
	s.AddTool(validateTool(), t.HandleValidate)
	s.AddTool(resolveTool(), t.HandleResolve)
	s.AddTool(findTool(), t.HandleFind)
	return s
}

// Serve runs the server over stdio until the client disconnects.
func Serve(t *Tools, version string) error {
	return server.ServeStdio(New(t, version))
}

const instructions = `Wildcard datasets map keys to lists of template strings.
Templates use __path__ references, {a|b} selections, {2$$a|b|c} multiselects,
{10::a|1::b} weights and N#__path__ quantifiers.
Calls that take "path" or "yaml" use that dataset instead of the loaded one.`

func datasetArgs() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("path", mcp.Description("Dataset file or directory to load instead of the server's dataset")),
		mcp.WithString("yaml", mcp.Description("Inline YAML dataset to use instead of the server's dataset")),
	}
}

func validateTool() mcp.Tool {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription("Validate every template in a wildcard dataset and report issues as JSON"),
		mcp.WithString("min_severity", mcp.Description("Lowest severity to report: error, warning, info or all")),
	}, datasetArgs()...)
	return mcp.NewTool("validate_wildcards", opts...)
}

func resolveTool() mcp.Tool {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription("Expand a template expression against the dataset"),
		mcp.WithString("expression", mcp.Required(), mcp.Description("Template to expand")),
		mcp.WithNumber("seed", mcp.Description("Seed for reproducible output")),
		mcp.WithNumber("count", mcp.DefaultNumber(1), mcp.Description("Number of expansions")),
		mcp.WithBoolean("distinct", mcp.Description("Return distinct samples that differ from the input")),
	}, datasetArgs()...)
	return mcp.NewTool("resolve_expression", opts...)
}

func findTool() mcp.Tool {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription("Look up a wildcard path and list its items and the templates that reference it"),
		mcp.WithString("wildcard", mcp.Required(), mcp.Description("Wildcard path, e.g. clothing/size")),
	}, datasetArgs()...)
	return mcp.NewTool("find_wildcard", opts...)
}

// dataset picks the tree a call operates on. A call-local dataset gets its
// own store so its reference index is built too.
func (t *Tools) dataset(req mcp.CallToolRequest) (*tree.Store, error) {
	if p := req.GetString("path", ""); p != "" {
		root, err := ingest.Load(p)
		if err != nil {
			return nil, err
		}
		return tree.NewStore(root, t.log), nil
	}
	if y := req.GetString("yaml", ""); y != "" {
		root, err := ingest.LoadYAML([]byte(y))
		if err != nil {
			return nil, err
		}
		return tree.NewStore(root, t.log), nil
	}
	if t.store == nil {
		return nil, fmt.Errorf("no dataset loaded; pass path or yaml")
	}
	return t.store, nil
}

func (t *Tools) HandleValidate(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	store, err := t.dataset(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	issues := validator.New(t.log).Validate(store.Snapshot())
	counts := api.CountIssues(issues)
	issues = api.FilterIssues(issues, req.GetString("min_severity", "all"))

	var buf bytes.Buffer
	if err := report.JSON(&buf, req.GetString("path", ""), issues, counts); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(buf.String()), nil
}

func (t *Tools) HandleResolve(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	expr, err := req.RequireString("expression")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	store, err := t.dataset(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var rng grammar.Rand
	if args := req.GetArguments(); args["seed"] != nil {
		rng = grammar.NewRand(uint64(req.GetInt("seed", 0)))
	}
	r := resolver.New(store, rng, resolver.WithLogger(t.log))

	count := min(max(req.GetInt("count", 1), 1), maxResolveCount)
	var out []string
	if req.GetBool("distinct", false) {
		out = r.Samples(expr, count)
	} else {
		for range count {
			out = append(out, r.Resolve(expr, 0, t.maxDepth))
		}
	}
	return mcp.NewToolResultText(strings.Join(out, "\n")), nil
}

type findResult struct {
	Path         string   `json:"path"`
	Kind         string   `json:"kind"`
	Items        []string `json:"items,omitempty"`
	Children     []string `json:"children,omitempty"`
	ReferencedBy []string `json:"referencedBy"`
}

func (t *Tools) HandleFind(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref, err := req.RequireString("wildcard")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ref = strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(ref), "__"), "__")
	store, err := t.dataset(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	n := tree.Lookup(store.Snapshot(), ref)
	if n == nil {
		return mcp.NewToolResultError(fmt.Sprintf("wildcard %q not found", ref)), nil
	}

	res := findResult{Path: ref, ReferencedBy: []string{}}
	switch {
	case n.IsList():
		res.Kind = "list"
		res.Items = n.Strings()
	case n.IsGroup():
		res.Kind = "group"
		for _, c := range n.Children {
			res.Children = append(res.Children, c.Key)
		}
	default:
		res.Kind = "scalar"
	}
	for _, e := range store.Refs(ref) {
		path := append(append([]string{}, e.Keys...), api.IndexSegment(e.Index))
		res.ReferencedBy = append(res.ReferencedBy, api.FormatPath(path))
	}

	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
