// gdalref 沿中线定位点事件，并生成OGR数据源间的邻近矩阵
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/wgdzlh/gdalref"
	"github.com/wgdzlh/gdalref/internal/config"
	"github.com/wgdzlh/gdalref/linref"
	"github.com/wgdzlh/gdalref/log"
	"github.com/wgdzlh/gdalref/nearmatrix"
	"github.com/wgdzlh/gdalref/process"
	"github.com/wgdzlh/gdalref/utils"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var version = "0.1.0"

var (
	configPath string
	logLevel   string
	quiet      bool
	cfg        *config.Config

	inputPath  string
	outputPath string

	eventPaths   []string
	epsilon      float64
	consolidate  bool
	station      float64
	eventIDField string
	commentField string

	nearPath  string
	inputFld  string
	nearField string
)

func main() {
	err := rootCmd.Execute()
	_ = log.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "gdalref",
	Short:         "Linear referencing and near matrices over OGR datasources",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) (err error) {
		if cfg, err = config.Load(configPath); err != nil {
			return
		}
		if cmd.Flags().Changed("log-level") {
			cfg.LogLevel = logLevel
		}
		return log.SetLevel(cfg.LogLevel)
	},
}

var linrefCmd = &cobra.Command{
	Use:   "linref",
	Short: "Locate point events along a single alignment",
	Long: `Projects every event onto the alignment and writes, per event, its distance
from the line, its station along the line and its side. Events sharing an
id are reduced to Start and End records unless --consolidate=false.`,
	RunE: runLinref,
}

var nearCmd = &cobra.Command{
	Use:   "nearmatrix",
	Short: "Distance and shortest line between every pair of features of two layers",
	RunE:  runNearMatrix,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (default $"+config.EnvConfig+")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "hide the progress bar")

	linrefCmd.Flags().StringVarP(&inputPath, "input", "i", "", "alignment source, path or path|layer (required)")
	linrefCmd.Flags().StringSliceVarP(&eventPaths, "events", "e", nil, "event sources, comma separated (required)")
	linrefCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file or memory: (default: a new run dir under work_dir)")
	linrefCmd.Flags().Float64Var(&epsilon, "epsilon", -1, "max distance from the line, -1 keeps all")
	linrefCmd.Flags().BoolVar(&consolidate, "consolidate", true, "reduce events sharing an id to Start and End")
	linrefCmd.Flags().Float64Var(&station, "station", 100, "station length")
	linrefCmd.Flags().StringVar(&eventIDField, "id-field", "GUID", "event id field")
	linrefCmd.Flags().StringVar(&commentField, "comment-field", "comment", "event comment field")
	_ = linrefCmd.MarkFlagRequired("input")
	_ = linrefCmd.MarkFlagRequired("events")

	nearCmd.Flags().StringVarP(&inputPath, "input", "i", "", "input source (required)")
	nearCmd.Flags().StringVarP(&nearPath, "near", "n", "", "near source (required)")
	nearCmd.Flags().StringVar(&inputFld, "input-field", "", "input id field (required)")
	nearCmd.Flags().StringVar(&nearField, "near-field", "", "near id field (required)")
	nearCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file or memory: (default: a new run dir under work_dir)")
	for _, f := range []string{"input", "near", "input-field", "near-field"} {
		_ = nearCmd.MarkFlagRequired(f)
	}

	rootCmd.AddCommand(linrefCmd, nearCmd)
}

// 未指定输出时在工作目录下创建唯一子目录
func destination(name string) (string, error) {
	if outputPath != "" {
		return outputPath, nil
	}
	dir, err := utils.GetUniqSubDir(cfg.WorkDir)
	if err != nil {
		return "", fmt.Errorf("create run dir: %w", err)
	}
	return filepath.Join(dir, name+cfg.OutputExt), nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runLinref(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	if !flags.Changed("epsilon") {
		epsilon = cfg.Epsilon
	}
	if !flags.Changed("consolidate") {
		consolidate = cfg.Consolidate
	}
	if !flags.Changed("station") {
		station = cfg.Station
	}
	if !flags.Changed("id-field") {
		eventIDField = cfg.EventIDField
	}
	if !flags.Changed("comment-field") {
		commentField = cfg.CommentField
	}
	out, err := destination("linref")
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	fb := newBarFeedback("linref", quiet)
	defer fb.Finish()
	st, err := linref.New(gdalref.NewGdalToolbox()).Execute(ctx, process.Params{
		process.ParamInput:        inputPath,
		process.ParamEvents:       eventPaths,
		process.ParamOutput:       out,
		process.ParamEpsilon:      epsilon,
		process.ParamConsolidate:  consolidate,
		process.ParamStation:      station,
		process.ParamEventIDField: eventIDField,
		process.ParamCommentField: commentField,
	}, fb)
	if err != nil {
		return err
	}
	log.Info("linref done", zap.String("run", st.RunID), zap.String("output", out),
		zap.Int("events", st.Events), zap.Int("written", st.Written), zap.Int("filtered", st.Filtered),
		zap.Int("groups", st.Groups), zap.Int("deleted", st.Deleted), zap.Bool("canceled", st.Canceled))
	if st.Canceled {
		return context.Canceled
	}
	return nil
}

func runNearMatrix(_ *cobra.Command, _ []string) error {
	out, err := destination("nearmatrix")
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	fb := newBarFeedback("nearmatrix", quiet)
	defer fb.Finish()
	st, err := nearmatrix.New(gdalref.NewGdalToolbox()).Execute(ctx, process.Params{
		process.ParamInput:      inputPath,
		process.ParamNear:       nearPath,
		process.ParamInputField: inputFld,
		process.ParamNearField:  nearField,
		process.ParamOutput:     out,
	}, fb)
	if err != nil {
		return err
	}
	log.Info("nearmatrix done", zap.String("run", st.RunID), zap.String("output", out),
		zap.Int("pairs", st.Pairs), zap.Int("empty", st.EmptyPairs), zap.Bool("canceled", st.Canceled))
	if st.Canceled {
		return context.Canceled
	}
	return nil
}
