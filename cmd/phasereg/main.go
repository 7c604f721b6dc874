package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"phasereg/pkg/config"
	"phasereg/pkg/registration"
	"phasereg/pkg/visualization"
)

func main() {
	// Parse command line arguments
	fixedPath := flag.String("fixed", "", "Fixed (reference) image, JPEG or PNG")
	movingPath := flag.String("moving", "", "Moving image to register onto the fixed image")
	configPath := flag.String("config", "phasereg.yaml", "Configuration file")
	createConfig := flag.Bool("create-config", false, "Write a default configuration file and exit")
	workers := flag.Int("workers", 0, "Number of parallel workers (default: from config)")
	surfacePath := flag.String("surface", "", "Save the correlation surface as a JPEG to this path")
	flag.Parse()

	if *createConfig {
		if err := config.CreateDefaultConfigFile(*configPath); err != nil {
			log.Fatalf("Failed to create config file: %v", err)
		}
		fmt.Printf("Default configuration written to %s\n", *configPath)
		return
	}

	// Validate inputs
	if *fixedPath == "" || *movingPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	// Load configuration, falling back to defaults when the file is absent
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *workers > 0 {
		cfg.Registration.NumWorkers = *workers
	}
	if *surfacePath != "" {
		cfg.Output.SurfacePath = *surfacePath
	}
	points, err := cfg.ControlPoints()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	fmt.Println("================================")
	fmt.Println("PHASE CORRELATION IMAGE REGISTRATION")
	fmt.Println("================================")

	// Load the two images as grayscale
	fixed, fw, fh, err := registration.LoadGrayImage(*fixedPath)
	if err != nil {
		log.Fatalf("Failed to load fixed image: %v", err)
	}
	moving, mw, mh, err := registration.LoadGrayImage(*movingPath)
	if err != nil {
		log.Fatalf("Failed to load moving image: %v", err)
	}
	fmt.Printf("Fixed image:  %s (%dx%d)\n", *fixedPath, fw, fh)
	fmt.Printf("Moving image: %s (%dx%d)\n", *movingPath, mw, mh)

	// Run the registration pipeline
	registrar := registration.NewRegistrar(&registration.Params{
		ControlPoints: points,
		Workers:       cfg.Registration.NumWorkers,
		SubPixel:      cfg.Peak.SubPixel,
		MinConfidence: cfg.Peak.MinConfidence,
		Verbose:       cfg.Output.Verbose,
	})

	startTime := time.Now()
	result, err := registrar.Register(fixed, fw, fh, moving, mw, mh)
	if err != nil {
		log.Fatalf("Registration failed: %v", err)
	}
	elapsed := time.Since(startTime)

	fmt.Printf("\nRegistration completed in %.3f seconds\n\n", elapsed.Seconds())
	fmt.Printf("Estimated shift (pixels):  (%.3f, %.3f)\n", result.Shift.X, result.Shift.Y)
	fmt.Printf("Estimated shift (physical): (%.3f, %.3f)\n", result.PhysicalShift.X, result.PhysicalShift.Y)
	fmt.Printf("Peak bin: (%d, %d) value %.4f\n", result.Peak.X, result.Peak.Y, result.Peak.Value)
	fmt.Printf("Confidence: %.2f sigma (minimum %.2f)\n", result.Confidence, cfg.Peak.MinConfidence)
	if result.SubPixel {
		fmt.Println("Sub-pixel refinement: applied")
	}
	if !result.IsValid {
		fmt.Println("WARNING: confidence below the configured minimum; the shift may be unreliable")
	}
	fmt.Printf("Used %d workers\n", cfg.Registration.NumWorkers)

	// Optionally save the correlation surface for inspection
	if cfg.Output.SurfacePath != "" {
		view, err := visualization.NewSurfaceView(result.Surface, result.SurfaceWidth, result.SurfaceHeight)
		if err != nil {
			log.Fatalf("Failed to build surface view: %v", err)
		}
		if err := view.Save(cfg.Output.SurfacePath, cfg.Output.CenterSurface); err != nil {
			log.Fatalf("Failed to save correlation surface: %v", err)
		}
		fmt.Printf("Correlation surface saved to: %s\n", cfg.Output.SurfacePath)
	}

	if !result.IsValid {
		os.Exit(2)
	}
}
