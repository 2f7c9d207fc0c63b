package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"

	"github.com/TechTorque-2025/Agent-Bot/internal/domain/llm"
	"github.com/TechTorque-2025/Agent-Bot/internal/logger"
	"github.com/TechTorque-2025/Agent-Bot/internal/metrics"
)

// Dispatch outcome statuses, used as metric labels.
const (
	StatusOK          = "ok"
	StatusError       = "error"
	StatusInvalidArgs = "invalid_args"
	StatusUnknown     = "unknown"
)

// Result is the outcome of one dispatched call. Output is always
// model-readable, including failures.
type Result struct {
	Output   string
	Category string
	Status   string
}

type entry struct {
	tool   Tool
	schema *gojsonschema.Schema
}

// Registry maps tool names to tools with precompiled argument schemas.
type Registry struct {
	entries map[string]entry
	order   []string
}

// NewRegistry compiles every tool's parameter schema. Duplicate names are rejected.
func NewRegistry(tools ...Tool) (*Registry, error) {
	r := &Registry{entries: make(map[string]entry, len(tools))}
	for _, t := range tools {
		name := t.Name()
		if _, dup := r.entries[name]; dup {
			return nil, fmt.Errorf("duplicate tool name: %s", name)
		}
		schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(t.Parameters()))
		if err != nil {
			return nil, fmt.Errorf("tool %s: compile schema: %w", name, err)
		}
		r.entries[name] = entry{tool: t, schema: schema}
		r.order = append(r.order, name)
	}
	return r, nil
}

// Specs advertises the registered tools in registration order.
func (r *Registry) Specs() []llm.ToolSpec {
	specs := make([]llm.ToolSpec, 0, len(r.order))
	for _, name := range r.order {
		t := r.entries[name].tool
		specs = append(specs, llm.ToolSpec{
			Name:        name,
			Description: t.Description(),
			Parameters:  t.Parameters(),
		})
	}
	return specs
}

// Dispatch validates and runs a model tool call. It never returns an error:
// unknown tools, bad arguments and downstream failures all become an
// "Error: ..." output the model can reason about.
func (r *Registry) Dispatch(ctx context.Context, call llm.ToolCall, credential string) Result {
	log := logger.FromContext(ctx).With(zap.String("tool", call.Name))

	e, ok := r.entries[call.Name]
	if !ok {
		log.Warn("Model requested unknown tool")
		return r.finish(call.Name, StatusUnknown, "", fmt.Sprintf("Error: unknown tool %q.", call.Name))
	}
	category := e.tool.Category()

	args, err := parseArgs(call.Arguments)
	if err != nil {
		log.Warn("Malformed tool arguments", zap.Error(err))
		return r.finish(call.Name, StatusInvalidArgs, category,
			fmt.Sprintf("Error: malformed arguments for %s: %v", call.Name, err))
	}
	if err := validate(e.schema, args); err != nil {
		log.Warn("Invalid tool arguments", zap.Error(err))
		return r.finish(call.Name, StatusInvalidArgs, category,
			fmt.Sprintf("Error: invalid arguments for %s: %v", call.Name, err))
	}

	start := time.Now()
	out, err := e.tool.Execute(ctx, args, credential)
	metrics.ToolCallDuration.WithLabelValues(call.Name).Observe(time.Since(start).Seconds())
	if err != nil {
		log.Warn("Tool execution failed", zap.Error(err))
		return r.finish(call.Name, StatusError, category, "Error: "+err.Error())
	}

	log.Debug("Tool executed", zap.Duration("duration", time.Since(start)))
	return r.finish(call.Name, StatusOK, category, out)
}

func (r *Registry) finish(name, status, category, output string) Result {
	metrics.ToolCallsTotal.WithLabelValues(name, status).Inc()
	return Result{Output: output, Category: category, Status: status}
}

// parseArgs decodes the raw JSON argument object. Empty input means no arguments.
func parseArgs(raw string) (map[string]any, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return map[string]any{}, nil
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, err
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}

func validate(schema *gojsonschema.Schema, args map[string]any) error {
	result, err := schema.Validate(gojsonschema.NewGoLoader(args))
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}
	if result.Valid() {
		return nil
	}
	details := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		details = append(details, desc.String())
	}
	return fmt.Errorf("arguments failed validation: %s", strings.Join(details, "; "))
}
