package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/Shuvo786/Nexway-API/internal/nexway"
	"github.com/Shuvo786/Nexway-API/pkg/logger"
)

// tabWriter wraps tabwriter with error tracking.
type tabWriter struct {
	*tabwriter.Writer
	err error
}

func newTabWriter(w io.Writer) *tabWriter {
	return &tabWriter{Writer: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
}

func (tw *tabWriter) writef(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.Writer, format, args...)
}

func (tw *tabWriter) finish() error {
	if tw.err != nil {
		return tw.err
	}
	return tw.Flush()
}

// printDocument writes an API response either indented or as received.
func printDocument(w io.Writer, format string, doc json.RawMessage) error {
	if format == "json" {
		_, err := fmt.Fprintln(w, string(bytes.TrimSpace(doc)))
		return err
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, doc, "", "  "); err != nil {
		return fmt.Errorf("formatting response: %w", err)
	}
	buf.WriteByte('\n')
	_, err := buf.WriteTo(w)
	return err
}

func printToken(w io.Writer, format string, tok nexway.Token, show bool) error {
	access, refresh := tok.AccessToken, tok.RefreshToken
	if !show {
		access, refresh = logger.Mask(access), logger.Mask(refresh)
	}

	if format == "json" {
		return outputJSON(w, map[string]any{
			"access_token":       access,
			"refresh_token":      refresh,
			"token_type":         tok.TokenType,
			"expires_in":         tok.ExpiresIn,
			"refresh_expires_in": tok.RefreshExpiresIn,
			"obtained_at":        tok.ObtainedAt.Format(time.RFC3339),
		})
	}

	tw := newTabWriter(w)
	tw.writef("Access token:\t%s\n", access)
	tw.writef("Refresh token:\t%s\n", refresh)
	tw.writef("Type:\t%s\n", tok.TokenType)
	tw.writef("Expires in:\t%ds\n", tok.ExpiresIn)
	tw.writef("Refresh expires in:\t%ds\n", tok.RefreshExpiresIn)
	tw.writef("Obtained at:\t%s\n", tok.ObtainedAt.Format(time.RFC3339))
	return tw.finish()
}

func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
