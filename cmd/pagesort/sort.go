package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/arloliu/pagesort"
	"github.com/arloliu/pagesort/container"
	"github.com/arloliu/pagesort/errs"
	"github.com/arloliu/pagesort/format"
	"github.com/arloliu/pagesort/internal/logging"
	"github.com/arloliu/pagesort/record"
	"github.com/arloliu/pagesort/sorter"
)

func runSort(ctx context.Context, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	switch strings.ToLower(recordType) {
	case "float64", "double":
		return sortTyped[float64](ctx, args[0], args[1])
	case "float32", "float":
		return sortTyped[float32](ctx, args[0], args[1])
	case "int64":
		return sortTyped[int64](ctx, args[0], args[1])
	case "int32", "int":
		return sortTyped[int32](ctx, args[0], args[1])
	default:
		return fmt.Errorf("%w: record type %q", errs.ErrInvalidOption, recordType)
	}
}

func sortTyped[T record.Value](ctx context.Context, src, dst string) error {
	policy, err := sorter.ParsePolicy(policyName)
	if err != nil {
		return err
	}

	opts := []pagesort.Option{
		pagesort.WithBacking(backingPath),
		pagesort.WithValidation(!noValidate),
		pagesort.WithSync(syncBacking),
		pagesort.WithContainerOptions(containerOptions()...),
		pagesort.WithSorterOptions(
			sorter.WithChunkSize(chunkSize),
			sorter.WithWorkers(workers),
			sorter.WithMemLimit(memLimit),
			sorter.WithBudgetPolicy(policy),
			sorter.WithLogger(logging.L),
		),
		pagesort.WithObserver(progress),
	}
	if compression != "" {
		ct, err := format.ParseCompression(compression)
		if err != nil {
			return err
		}
		opts = append(opts, pagesort.WithExportOptions(container.WithExportCompression(ct)))
	}

	printInfo("Sorting %s into %s\n", src, dst)
	_, err = pagesort.SortFile[T](ctx, src, dst, opts...)
	if err != nil {
		var inv *errs.InversionError
		if errors.As(err, &inv) {
			printError("validation failed at record %d: %s > %s\n", inv.Index, inv.Prev, inv.Next)
		}

		return err
	}

	return reportQuantiles[T]()
}

func progress(stage pagesort.Stage, r pagesort.Report) {
	switch stage {
	case pagesort.StageConverted:
		printInfo("Backing file %s ready: %d records\n", r.Backing, r.Records)
	case pagesort.StageSorted:
		printInfo("Sorted in %s (%d worker pairs, %d merges, %d spills)\n",
			r.Sort.Elapsed, r.Sort.Pairs, r.Sort.Merges, r.Sort.Spills)
	case pagesort.StageValidating:
		printInfo("Validating...\n")
	case pagesort.StageValidated:
		printInfo("Validation passed in %s\n", r.Validate)
	case pagesort.StageExported:
		printInfo("Wrote %d lines\n", r.Exported)
	}
}

func reportQuantiles[T record.Value]() error {
	if len(quantiles) == 0 {
		return nil
	}

	r, err := pagesort.OpenReader[T](backingPath, container.WithReaderLogger(logging.L))
	if err != nil {
		return err
	}
	defer r.Close()

	if r.Len() == 0 {
		printInfo("No records, no quantiles\n")
		return nil
	}

	codec := r.Codec()
	for _, q := range quantiles {
		v, err := r.Quantile(q)
		if err != nil {
			return err
		}
		printInfo("q%g = %s\n", q, codec.FormatText(v))
	}

	return nil
}
