package pipeline

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/uzzysan/Klauzule-zakazane/internal/lib"
	"github.com/uzzysan/Klauzule-zakazane/internal/models"
)

const (
	traceScopeWorkflow = "klauzula.workflow"

	traceSpanRun         = "klauzula.workflow.run"
	traceSpanStagePrefix = "klauzula.workflow."

	traceAttrRunID      = "klauzula.run_id"
	traceAttrFileName   = "klauzula.file_name"
	traceAttrFileSize   = "klauzula.file_size"
	traceAttrStage      = "klauzula.stage"
	traceAttrDocumentID = "klauzula.document_id"
	traceAttrTaskID     = "klauzula.task_id"
	traceAttrAnalysisID = "klauzula.analysis_id"
	traceAttrStatus     = "klauzula.status"
	traceAttrErrorKind  = "klauzula.error_kind"
)

func startRunSpan(ctx context.Context, tracer trace.Tracer, runID string, req models.SubmissionRequest) (context.Context, trace.Span) {
	return tracer.Start(ctx, traceSpanRun, trace.WithAttributes(
		attribute.String(traceAttrRunID, runID),
		attribute.String(traceAttrFileName, req.FileName),
		attribute.Int64(traceAttrFileSize, req.Size),
	))
}

func startStageSpan(ctx context.Context, tracer trace.Tracer, stage models.Stage, runID string) (context.Context, trace.Span) {
	return tracer.Start(ctx, traceSpanStagePrefix+string(stage), trace.WithAttributes(
		attribute.String(traceAttrRunID, runID),
		attribute.String(traceAttrStage, string(stage)),
	))
}

func markSpanResult(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, lib.Reason(err))
		span.SetAttributes(
			attribute.String(traceAttrStatus, "error"),
			attribute.String(traceAttrErrorKind, string(lib.KindOf(err))),
		)
		return
	}
	span.SetStatus(codes.Ok, "")
	span.SetAttributes(attribute.String(traceAttrStatus, "success"))
}
