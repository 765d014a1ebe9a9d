package cmd

import (
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Avinash9608/Furniture-sub006/internal/catalog"
	"github.com/Avinash9608/Furniture-sub006/internal/ingest"
	"github.com/Avinash9608/Furniture-sub006/internal/submit"
)

type productFlags struct {
	id            string
	name          string
	description   string
	price         float64
	stock         int
	category      string
	featured      bool
	material      string
	color         string
	discountPrice float64
	length        float64
	width         float64
	height        float64
	images        []string
	existing      []string
	replaceImages bool
}

func newProductCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "product",
		Short: "Create or update catalog products.",
	}
	cmd.AddCommand(newProductSaveCmd("create", "Create a product.", false))
	cmd.AddCommand(newProductSaveCmd("update", "Update an existing product.", true))
	return cmd
}

func newProductSaveCmd(use, short string, update bool) *cobra.Command {
	var f productFlags
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runProductSave(cmd, f, update)
		},
	}

	fl := cmd.Flags()
	if update {
		fl.StringVar(&f.id, "id", "", "product id (required)")
		_ = cmd.MarkFlagRequired("id")
	}
	fl.StringVar(&f.name, "name", "", "product name (required)")
	fl.StringVar(&f.description, "description", "", "description")
	fl.Float64Var(&f.price, "price", 0, "price (required)")
	fl.IntVar(&f.stock, "stock", 0, "stock count")
	fl.StringVar(&f.category, "category", "", "category id (required)")
	fl.BoolVar(&f.featured, "featured", false, "feature on the storefront")
	fl.StringVar(&f.material, "material", "", "material")
	fl.StringVar(&f.color, "color", "", "color")
	fl.Float64Var(&f.discountPrice, "discount-price", 0, "discounted price")
	fl.Float64Var(&f.length, "length", 0, "length in cm")
	fl.Float64Var(&f.width, "width", 0, "width in cm")
	fl.Float64Var(&f.height, "height", 0, "height in cm")
	fl.StringSliceVar(&f.images, "image", nil, "image file to upload (repeatable)")
	fl.StringSliceVar(&f.existing, "existing-image", nil, "already-persisted image reference to keep (repeatable)")
	fl.BoolVar(&f.replaceImages, "replace-images", false, "replace stored images instead of appending")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("price")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}

func runProductSave(cmd *cobra.Command, f productFlags, update bool) error {
	form := submit.FormState{
		Name:          f.name,
		Description:   f.description,
		Price:         f.price,
		Stock:         f.stock,
		CategoryID:    f.category,
		Featured:      f.featured,
		Material:      f.material,
		Color:         f.color,
		ReplaceImages: f.replaceImages,
	}
	if update {
		form.ProductID = f.id
	}
	if f.discountPrice > 0 {
		form.DiscountPrice = &f.discountPrice
	}
	if f.length > 0 || f.width > 0 || f.height > 0 {
		form.Dimensions = &submit.Dimensions{Length: f.length, Width: f.width, Height: f.height}
	}

	selection, err := readSelection(f.images)
	if err != nil {
		return err
	}

	cfg := instance.Config().Upload
	pipeline := instance.Pipeline()

	current := make([]*catalog.UploadCandidate, 0, len(f.existing))
	for i, ref := range f.existing {
		current = append(current, ingest.Existing(ref, i))
	}

	res := pipeline.Ingest(selection, current, ingest.Config{
		Multiple:      true,
		MaxFiles:      cfg.MaxFiles,
		MaxSizeBytes:  cfg.MaxSizeBytes,
		AcceptPattern: cfg.AcceptPattern,
	})
	defer pipeline.ReleaseAll(res.Accepted)

	for _, rej := range res.Rejected {
		fmt.Fprintf(cmd.ErrOrStderr(), "skipping %s: rejected (%s)\n", rej.Name, rej.Reason)
	}

	entity, err := instance.Client().SaveProduct(cmd.Context(), form, res.Accepted)
	if err != nil {
		var serr *submit.SubmissionError
		if errors.As(err, &serr) && serr.State == submit.StatePartialFailure {
			fmt.Fprintln(cmd.ErrOrStderr(), "assets were uploaded but the product was not saved; uploaded references:")
			for _, ref := range serr.UploadedRefs {
				fmt.Fprintf(cmd.ErrOrStderr(), "  %s\n", ref)
			}
			fmt.Fprintln(cmd.ErrOrStderr(), "retry with --existing-image for each reference above to avoid re-uploading")
		}
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "saved product %s\n", entity.ID)
	return nil
}

// readSelection loads the selected image files from disk, inferring MIME
// types from file extensions.
func readSelection(paths []string) ([]ingest.File, error) {
	files := make([]ingest.File, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p) // #nosec G304 -- path comes from an operator flag
		if err != nil {
			return nil, fmt.Errorf("read image %s: %w", p, err)
		}
		mimeType := mime.TypeByExtension(filepath.Ext(p))
		if mimeType == "" {
			mimeType = "application/octet-stream"
		}
		files = append(files, ingest.File{
			Name:      filepath.Base(p),
			SizeBytes: int64(len(data)),
			MIMEType:  mimeType,
			Data:      data,
		})
	}
	return files, nil
}
