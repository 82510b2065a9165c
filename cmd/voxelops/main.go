package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"voxelops/pkg/c3d"
	"voxelops/pkg/config"
	"voxelops/pkg/crop"
	"voxelops/pkg/kernel"
	"voxelops/pkg/preview"
	"voxelops/pkg/resample"
	"voxelops/pkg/stats"
	"voxelops/pkg/suv"
	"voxelops/pkg/volumeio"
)

func main() {
	// Parse command line arguments
	op := flag.String("op", "", "Operation to run: resample, crop, stats, preview, suv, split or bq2suv")
	inputPath := flag.String("in", "", "Input NIfTI image (.nii or .nii.gz)")
	outputPath := flag.String("out", "", "Output file (NIfTI, CSV or PNG depending on the operation)")
	maskPath := flag.String("mask", "", "Label mask NIfTI image for crop and stats")
	spacingArg := flag.String("spacing", "", "Target voxel spacing in mm as x,y,z (e.g. 1.5,1.5,1.5)")
	orderArg := flag.Int("order", -1, "Interpolation order: 0 nearest-neighbour, 3 cubic (default from config)")
	label := flag.Int("label", 1, "Mask label to crop around")
	padding := flag.Int("padding", -1, "Crop margin in voxels per axis (default from config)")
	dicomPath := flag.String("dicom", "", "PET DICOM file for SUV parameter extraction")
	configPath := flag.String("config", "voxelops.yaml", "Configuration file path")
	flag.Parse()

	if *op == "" {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	startTime := time.Now()
	switch *op {
	case "resample":
		err = runResample(cfg, *inputPath, *outputPath, *spacingArg, *orderArg)
	case "crop":
		err = runCrop(cfg, *inputPath, *maskPath, *outputPath, *label, *padding)
	case "stats":
		err = runStats(*inputPath, *maskPath, *outputPath)
	case "preview":
		err = runPreview(*inputPath, *outputPath)
	case "suv":
		err = runSUV(*dicomPath)
	case "split":
		err = runSplit(cfg, *inputPath, *outputPath)
	case "bq2suv":
		err = runBqToSUV(cfg, *dicomPath, *inputPath, *outputPath)
	default:
		log.Fatalf("Unknown operation %q", *op)
	}
	if err != nil {
		log.Fatalf("Operation %s failed: %v", *op, err)
	}

	if cfg.Output.Verbose {
		fmt.Printf("Operation %s completed in %.2f seconds\n", *op, time.Since(startTime).Seconds())
	}
}

func runResample(cfg *config.Config, inputPath, outputPath, spacingArg string, orderArg int) error {
	if inputPath == "" || outputPath == "" || spacingArg == "" {
		return fmt.Errorf("resample requires -in, -out and -spacing")
	}
	targetSpacing, err := parseSpacing(spacingArg)
	if err != nil {
		return err
	}

	order := kernel.Order(cfg.Processing.InterpolationOrder)
	if orderArg >= 0 {
		order = kernel.Order(orderArg)
	}

	resizer, err := cfg.Resizer()
	if err != nil {
		return err
	}
	resampler := resample.New(resizer)
	if cfg.Output.Verbose {
		resampler = resample.NewVerbose(resizer)
	}

	vol, err := volumeio.Read(inputPath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", inputPath, err)
	}
	out, err := resampler.Resample(vol, targetSpacing, order)
	if err != nil {
		return err
	}
	return volumeio.Write(out, outputPath)
}

func runCrop(cfg *config.Config, inputPath, maskPath, outputPath string, label, padding int) error {
	if inputPath == "" || maskPath == "" || outputPath == "" {
		return fmt.Errorf("crop requires -in, -mask and -out")
	}
	if padding < 0 {
		padding = cfg.Processing.CropPadding
	}

	img, err := volumeio.Read(inputPath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", inputPath, err)
	}
	mask, err := volumeio.Read(maskPath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", maskPath, err)
	}

	out, err := crop.Crop(img, mask, label, crop.UniformPadding(img.Dims(), padding))
	if err != nil {
		return err
	}
	return volumeio.Write(out, outputPath)
}

func runStats(inputPath, maskPath, outputPath string) error {
	if inputPath == "" || maskPath == "" || outputPath == "" {
		return fmt.Errorf("stats requires -in, -mask and -out")
	}

	img, err := volumeio.Read(inputPath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", inputPath, err)
	}
	mask, err := volumeio.Read(maskPath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", maskPath, err)
	}

	intensity, err := stats.Intensity(img, mask, stats.PETCTOrgans)
	if err != nil {
		return err
	}
	shape, err := stats.Shape(mask, stats.PETCTOrgans)
	if err != nil {
		return err
	}

	if err := writeCSV(outputPath, func(f *os.File) error {
		return stats.WriteIntensityCSV(f, intensity)
	}); err != nil {
		return err
	}
	shapePath := shapeCSVPath(outputPath)
	if err := writeCSV(shapePath, func(f *os.File) error {
		return stats.WriteShapeCSV(f, shape)
	}); err != nil {
		return err
	}
	fmt.Printf("Wrote intensity statistics to %s and shape statistics to %s\n", outputPath, shapePath)
	return nil
}

func runPreview(inputPath, outputPath string) error {
	if inputPath == "" || outputPath == "" {
		return fmt.Errorf("preview requires -in and -out")
	}
	vol, err := volumeio.Read(inputPath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", inputPath, err)
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", outputPath, err)
	}
	defer f.Close()
	return preview.CentralCoronalPNG(vol, f)
}

func runSUV(dicomPath string) error {
	if dicomPath == "" {
		return fmt.Errorf("suv requires -dicom")
	}
	f, err := os.Open(dicomPath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", dicomPath, err)
	}
	defer f.Close()

	params, err := suv.ReadParameters(f)
	if err != nil {
		return err
	}
	factor, err := params.ScaleFactor()
	if err != nil {
		return err
	}
	fmt.Printf("Patient weight: %.1f kg\n", params.WeightKg)
	fmt.Printf("Injected dose: %.1f MBq\n", params.TotalDoseMBq)
	fmt.Printf("Bq to SUV scale factor: %g\n", factor)
	return nil
}

func runSplit(cfg *config.Config, inputPath, outputPath string) error {
	if inputPath == "" || outputPath == "" {
		return fmt.Errorf("split requires -in (mask) and -out (directory)")
	}
	if err := os.MkdirAll(outputPath, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", outputPath, err)
	}
	tool := c3d.New(cfg.Tool.C3DBinary)
	return tool.SplitLeftRight(inputPath, outputPath)
}

func runBqToSUV(cfg *config.Config, dicomPath, inputPath, outputPath string) error {
	if dicomPath == "" || inputPath == "" || outputPath == "" {
		return fmt.Errorf("bq2suv requires -dicom, -in and -out")
	}
	tool := c3d.New(cfg.Tool.C3DBinary)
	return suv.ConvertBqToSUV(tool, dicomPath, inputPath, outputPath)
}

func parseSpacing(arg string) ([]float64, error) {
	parts := strings.Split(arg, ",")
	spacing := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid spacing value %q: %w", p, err)
		}
		spacing = append(spacing, v)
	}
	return spacing, nil
}

func shapeCSVPath(intensityPath string) string {
	if strings.HasSuffix(intensityPath, ".csv") {
		return strings.TrimSuffix(intensityPath, ".csv") + "_shape.csv"
	}
	return intensityPath + "_shape.csv"
}

func writeCSV(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()
	return write(f)
}
