package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"stickler/engine"
	"stickler/internal/middleware"
	"stickler/schema"
	"stickler/similarity"
)

// compareRequest is the JSON envelope accepted by POST /compare: a
// schema-exchange document (§6) plus the two records to compare and the
// engine options governing the shape of the response.
type compareRequest struct {
	Schema        json.RawMessage `json:"schema"`
	GroundTruth   schema.Record   `json:"ground_truth"`
	Predicted     schema.Record   `json:"predicted"`
	Options       *requestOptions `json:"options"`
}

type requestOptions struct {
	IncludeConfusionMatrix   bool `json:"include_confusion_matrix"`
	DocumentNonMatches       bool `json:"document_non_matches"`
	EvaluatorFormat          bool `json:"evaluator_format"`
	EvaluatorFormatAllNodes  bool `json:"evaluator_format_all_nodes"`
	RecallWithFD             bool `json:"recall_with_fd"`
}

func (o *requestOptions) toEngineOptions() engine.Options {
	opts := engine.DefaultOptions()
	if o == nil {
		return opts
	}
	opts.IncludeConfusionMatrix = o.IncludeConfusionMatrix
	opts.DocumentNonMatches = o.DocumentNonMatches
	opts.EvaluatorFormat = o.EvaluatorFormat
	opts.EvaluatorFormatAllNodes = o.EvaluatorFormatAllNodes
	opts.RecallWithFD = o.RecallWithFD
	return opts
}

// Compare returns the handler backing POST /compare: decode the schema,
// validate it against the comparator registry, run the recursive engine
// over ground_truth/predicted, and write the result tree as JSON.
func Compare(reg *similarity.Registry, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		reqID := middleware.GetRequestID(r)
		if reqID == "" {
			reqID = r.Header.Get("X-Request-ID")
		}
		log := logger
		if reqID != "" {
			log = logger.With().Str("req_id", reqID).Logger()
		}
		defer r.Body.Close()

		var req compareRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
			return
		}
		if len(req.Schema) == 0 {
			http.Error(w, "missing schema", http.StatusBadRequest)
			return
		}

		sch, err := schema.Decode(req.Schema)
		if err != nil {
			http.Error(w, "invalid schema: "+err.Error(), http.StatusBadRequest)
			return
		}
		if err := schema.Validate(sch, reg); err != nil {
			http.Error(w, "schema validation failed: "+err.Error(), http.StatusBadRequest)
			return
		}

		opts := req.Options.toEngineOptions()
		result, err := engine.Compare(r.Context(), req.GroundTruth, req.Predicted, sch, reg, opts)
		if err != nil {
			log.Error().Err(err).Msg("compare failed")
			http.Error(w, "compare failed: "+err.Error(), http.StatusUnprocessableEntity)
			return
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			log.Error().Err(err).Msg("write json")
			return
		}
		log.Info().Dur("elapsed", time.Since(start)).Msg("compare done")
	}
}
