package pkg

import (
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/photo2card/hs2card/pkg/chara/format_ais"
	"github.com/photo2card/hs2card/pkg/logging"
)

// ReadFace reads the face sliders of a card file. layoutChain is "auto", a
// single layout name or a "|" separated list.
func ReadFace(cardPath, layoutChain string) (*format_ais.ReadResult, error) {
	return ReadFaceWithLogger(cardPath, layoutChain, hclog.NewNullLogger())
}

// ReadFaceWithLogger reads the face sliders with a custom logger
func ReadFaceWithLogger(cardPath, layoutChain string, logger hclog.Logger) (*format_ais.ReadResult, error) {
	layouts, err := format_ais.ParseLayoutChain(layoutChain)
	if err != nil {
		return nil, err
	}
	return format_ais.NewReaderWithLogger(cardPath, logger).ReadFace(layouts...)
}

// WriteFace applies params to cardPath and writes the result to outputPath.
// outputPath may equal cardPath.
func WriteFace(cardPath, outputPath string, params format_ais.FaceParameterSet, layoutChain string) (*format_ais.WriteResult, error) {
	logger := logging.NewLogger("hs2card-write", logging.GetLogLevel(""), nil)
	return WriteFaceWithLogger(cardPath, outputPath, params, layoutChain, logger)
}

// WriteFaceWithLogger is WriteFace with a custom logger
func WriteFaceWithLogger(cardPath, outputPath string, params format_ais.FaceParameterSet, layoutChain string, logger hclog.Logger) (*format_ais.WriteResult, error) {
	if outputPath == "" {
		return nil, fmt.Errorf("output path is required")
	}
	layouts, err := format_ais.ParseLayoutChain(layoutChain)
	if err != nil {
		return nil, err
	}

	reader := format_ais.NewReaderWithLogger(cardPath, logger)
	file, res, err := reader.WriteFace(params, layouts...)
	if err != nil {
		return res, err
	}
	if err := format_ais.WriteCardFile(outputPath, file); err != nil {
		return res, fmt.Errorf("failed to write %s: %w", outputPath, err)
	}

	logger.Info("💾 Card written", "output", outputPath, "layout", res.Layout, "fields", len(res.Writes))
	return res, nil
}

// InspectCard summarizes a card file
func InspectCard(cardPath string, opts format_ais.SummaryOptions) (*format_ais.CardSummary, error) {
	return format_ais.NewReader(cardPath).Summarize(opts)
}

// CardExtensions decodes the plugin extension block of a card file
func CardExtensions(cardPath string) (*format_ais.Extensions, error) {
	return format_ais.NewReader(cardPath).Extensions()
}
