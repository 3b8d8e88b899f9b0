package services

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"time"

	"learntube/backend/utils"

	"github.com/fogleman/gg"
)

// CertificateRenderer produces a completion-certificate image for a named
// learner. The result is a data:image/png;base64 URL ready to store or
// serve as-is.
type CertificateRenderer interface {
	Render(userName, courseTitle string, issuedAt time.Time) (string, error)
}

// ImageCertificateRenderer draws certificates on a 2000x1414 canvas
// (roughly A4 landscape). Rendering is deterministic for fixed inputs.
type ImageCertificateRenderer struct{}

func NewImageCertificateRenderer() *ImageCertificateRenderer {
	return &ImageCertificateRenderer{}
}

const (
	certWidth  = 2000
	certHeight = 1414
)

func (r *ImageCertificateRenderer) Render(userName, courseTitle string, issuedAt time.Time) (string, error) {
	dc := gg.NewContext(certWidth, certHeight)

	// White ground with a heavy blue border.
	dc.SetHexColor("#ffffff")
	dc.Clear()
	dc.SetHexColor("#2563eb")
	dc.SetLineWidth(20)
	dc.DrawRectangle(40, 40, certWidth-80, certHeight-80)
	dc.Stroke()

	center := float64(certWidth) / 2

	dc.SetHexColor("#1e293b")
	dc.DrawStringAnchored("CERTIFICATE OF COMPLETION", center, 300, 0.5, 0.5)

	dc.SetHexColor("#64748b")
	dc.DrawStringAnchored("This certificate is proudly presented to", center, 450, 0.5, 0.5)

	dc.SetHexColor("#000000")
	dc.DrawStringAnchored(userName, center, 600, 0.5, 0.5)

	dc.SetHexColor("#64748b")
	dc.DrawStringAnchored("For successfully completing the course", center, 750, 0.5, 0.5)

	dc.SetHexColor("#2563eb")
	dc.DrawStringAnchored(courseTitle, center, 900, 0.5, 0.5)

	dc.SetHexColor("#94a3b8")
	awarded := fmt.Sprintf("Awarded on %s", issuedAt.Format("January 2, 2006"))
	dc.DrawStringAnchored(awarded, center, 1100, 0.5, 0.5)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return "", fmt.Errorf("encode certificate png: %v: %w", err, utils.ErrCollaborator)
	}

	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
