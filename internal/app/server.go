// Package app wires configuration, telemetry, the credential pipeline and the
// tool catalog into one MCP server.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"paypalmcp/internal/buildinfo"
	"paypalmcp/internal/domain"
	"paypalmcp/internal/infra/paypal"
	"paypalmcp/internal/infra/schema"
	"paypalmcp/internal/infra/telemetry"
	"paypalmcp/internal/infra/tools"
)

type Server struct {
	cfg      domain.Config
	logger   *zap.Logger
	tokens   *paypal.TokenSource
	api      domain.Invoker
	registry *tools.Registry
	server   *mcp.Server
}

func New(cfg domain.Config, logger *zap.Logger, metrics *telemetry.Metrics) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("app")

	tokens := paypal.NewTokenSource(cfg, nil, logger, metrics)
	api := paypal.NewClient(cfg, tokens, logger, metrics)

	registry, err := tools.NewRegistry(tools.All()...)
	if err != nil {
		return nil, domain.E(domain.CodeConfig, "app.new", "", err)
	}

	s := &Server{
		cfg:      cfg,
		logger:   logger,
		tokens:   tokens,
		api:      api,
		registry: registry,
	}

	s.server = mcp.NewServer(&mcp.Implementation{
		Name:    "paypal-mcp",
		Version: buildinfo.Version,
	}, &mcp.ServerOptions{
		HasTools: true,
	})

	for _, desc := range registry.Descriptors() {
		tool := &mcp.Tool{
			Name:        desc.Name,
			Description: desc.Description,
		}
		if desc.InputSchema != nil {
			tool.InputSchema = desc.InputSchema
		} else {
			tool.InputSchema = map[string]any{"type": "object"}
		}
		s.server.AddTool(tool, s.toolHandler(desc))
	}

	return s, nil
}

// Run verifies the configured credentials, starts the optional observability
// listener, and serves MCP over stdio until ctx ends.
func (s *Server) Run(ctx context.Context) error {
	if s.tokens.Verify(ctx) {
		s.logger.Info("credentials verified", zap.String("environment", s.cfg.Environment))
	} else {
		s.logger.Warn("credential verification failed; continuing, calls will surface auth errors")
	}

	if s.cfg.MetricsAddr != "" {
		go func() {
			if err := telemetry.StartHTTPServer(ctx, s.cfg.MetricsAddr, nil, s.logger); err != nil {
				s.logger.Error("observability server exited", zap.Error(err))
			}
		}()
	}

	s.logger.Info("server starting (stdio transport)", zap.Int("tools", len(s.registry.Descriptors())))
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Connect attaches the server to an arbitrary transport. Used by tests.
func (s *Server) Connect(ctx context.Context, transport mcp.Transport) (*mcp.ServerSession, error) {
	return s.server.Connect(ctx, transport, nil)
}

func (s *Server) toolHandler(desc domain.ToolDescriptor) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := map[string]any{}
		if len(req.Params.Arguments) > 0 {
			if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
				return nil, fmt.Errorf("decode arguments: %w", err)
			}
		}

		if desc.InputSchema != nil {
			if err := schema.Validate(desc.InputSchema, args); err != nil {
				// Surfaces as a protocol invalid-parameters error carrying
				// the full field detail. No network call has happened yet.
				return nil, err
			}
		} else {
			s.logger.Warn("no input shape registered; passing arguments through",
				zap.String("tool", desc.Name))
		}

		result, err := desc.Handler(ctx, s.api, args)
		if err != nil {
			if code, ok := domain.CodeFrom(err); ok && code == domain.CodeInvalidArgument {
				return nil, err
			}
			s.logger.Error("tool invocation failed",
				zap.String("tool", desc.Name),
				zap.Error(err),
			)
			return &mcp.CallToolResult{
				IsError: true,
				Content: []mcp.Content{&mcp.TextContent{Text: surfacedMessage(err)}},
			}, nil
		}

		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: string(result)}},
		}, nil
	}
}

// surfacedMessage maps a handler error to the text shown to the caller.
// Transport detail never leaves the logs.
func surfacedMessage(err error) string {
	if domain.HasCode(err, domain.CodeUnauthenticated) {
		return "failed to authenticate"
	}
	var domainErr *domain.Error
	if errors.As(err, &domainErr) && domainErr.Message != "" {
		return domainErr.Message
	}
	return "tool execution failed"
}
