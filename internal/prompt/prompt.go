// Package prompt implements the interactive conversion-options form using
// charmbracelet/huh. It is the CLI's replacement for the options dialog of
// the desktop plugin this tool descends from.
package prompt

import (
	"errors"

	"github.com/charmbracelet/huh"

	"github.com/pixelfold/rawbridge/internal/dcraw"
)

// ErrCanceled is returned when the user aborts the form.
var ErrCanceled = errors.New("canceled by user")

// EditOptions presents the conversion-options form, mutating opts in
// place when the user confirms. The passed-in values are the form's
// initial selections.
func EditOptions(opts *dcraw.Options) error {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[dcraw.WhiteBalance]().
				Title("White balance").
				Options(
					huh.NewOption(dcraw.WBNone.String(), dcraw.WBNone),
					huh.NewOption(dcraw.WBCamera.String(), dcraw.WBCamera),
					huh.NewOption(dcraw.WBAverage.String(), dcraw.WBAverage),
				).
				Value(&opts.WhiteBalance),
			huh.NewSelect[dcraw.ColorSpace]().
				Title("Output colorspace").
				Options(
					huh.NewOption(dcraw.CSRaw.String(), dcraw.CSRaw),
					huh.NewOption(dcraw.CSSRGB.String(), dcraw.CSSRGB),
					huh.NewOption(dcraw.CSAdobe.String(), dcraw.CSAdobe),
					huh.NewOption(dcraw.CSWide.String(), dcraw.CSWide),
					huh.NewOption(dcraw.CSProPhoto.String(), dcraw.CSProPhoto),
					huh.NewOption(dcraw.CSXYZ.String(), dcraw.CSXYZ),
					huh.NewOption(dcraw.CSACES.String(), dcraw.CSACES),
				).
				Value(&opts.ColorSpace),
			huh.NewSelect[dcraw.Format]().
				Title("Read as").
				Options(
					huh.NewOption(dcraw.Format8Bit.String(), dcraw.Format8Bit),
					huh.NewOption(dcraw.Format16Bit.String(), dcraw.Format16Bit),
					huh.NewOption(dcraw.Format16BitLinear.String(), dcraw.Format16BitLinear),
				).
				Value(&opts.Format),
			huh.NewSelect[dcraw.Quality]().
				Title("Interpolation quality").
				Options(
					huh.NewOption(dcraw.QualityBilinear.String(), dcraw.QualityBilinear),
					huh.NewOption(dcraw.QualityVNG.String(), dcraw.QualityVNG),
					huh.NewOption(dcraw.QualityPPG.String(), dcraw.QualityPPG),
					huh.NewOption(dcraw.QualityAHD.String(), dcraw.QualityAHD),
					huh.NewOption(dcraw.QualityDCB.String(), dcraw.QualityDCB),
					huh.NewOption(dcraw.QualityDHT.String(), dcraw.QualityDHT),
					huh.NewOption(dcraw.QualityAAHD.String(), dcraw.QualityAAHD),
				).
				Value(&opts.Quality),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Do not automatically brighten the image").
				Value(&opts.NoAutoBright),
			huh.NewConfirm().
				Title("Half size").
				Value(&opts.HalfSize),
			huh.NewConfirm().
				Title("Do not rotate or scale pixels").
				Description("Preserve orientation and aspect ratio").
				Value(&opts.KeepOrientation),
			huh.NewConfirm().
				Title("Use temporary directory for processing").
				Value(&opts.UseTempDir),
		),
	)

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return ErrCanceled
		}
		return err
	}
	return nil
}
