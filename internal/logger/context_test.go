// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
)

func TestContextWithRequestID(t *testing.T) {
	t.Run("request id round trips through the context", func(t *testing.T) {
		ctx := ContextWithRequestID(t.Context(), "req-42")
		if got := RequestIDFromContext(ctx); got != "req-42" {
			t.Errorf("expected request id %q, got %q", "req-42", got)
		}
	})
	t.Run("missing request id yields empty string", func(t *testing.T) {
		if got := RequestIDFromContext(context.Background()); got != "" {
			t.Errorf("expected empty request id, got %q", got)
		}
	})
}

func TestLogger_WithContext(t *testing.T) {
	buf := bytes.NewBuffer(nil)
	l := NewLogger(slog.LevelInfo, buf)
	l.WithContext(ContextWithRequestID(t.Context(), "req-43")).Info("from context")
	if !bytes.Contains(buf.Bytes(), []byte("request_id=req-43")) {
		t.Errorf("expected request id in output, got: %q", buf.String())
	}
}
