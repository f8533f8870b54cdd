package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/arloliu/lmkit/cmd/lmkit/internal/render"
	"github.com/arloliu/lmkit/format"
	"github.com/arloliu/lmkit/snapshot"
)

type snapshotOptions struct {
	data        string
	out         string
	compression string
}

func newSnapshotCmd(a *app) *cobra.Command {
	o := &snapshotOptions{}

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Convert a data file into a compressed .lmks snapshot",
		Long: `Read a delimited text file with the usual type inference and write it as a
compressed binary snapshot. Snapshots keep the inferred column types, load without
parsing and are accepted by every --data flag.

EXAMPLES:
  lmkit snapshot -d houses.csv --out houses.lmks
  lmkit snapshot -d houses.csv --out houses.lmks --compression lz4`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.snapshot(o)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&o.data, "data", "d", "", "data file to convert")
	f.StringVar(&o.out, "out", "", "snapshot file to write")
	f.StringVar(&o.compression, "compression", "zstd", "compression codec (none, zstd, s2, lz4)")
	mustMarkRequired(cmd, "data", "out")

	return cmd
}

func (a *app) snapshot(o *snapshotOptions) error {
	codec, ok := format.ParseCompressionType(o.compression)
	if !ok {
		return fmt.Errorf("unknown compression %q (want none, zstd, s2 or lz4)", o.compression)
	}

	if err := a.load(o.data); err != nil {
		return err
	}
	ds, err := a.session.Dataset()
	if err != nil {
		return err
	}

	data, err := snapshot.Encode(ds,
		snapshot.WithCompression(codec),
		snapshot.WithLogger(a.session.Logger()),
	)
	if err != nil {
		return err
	}

	h, err := snapshot.Inspect(data)
	if err != nil {
		return err
	}

	if err := os.WriteFile(o.out, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	return a.renderer.Render(&render.SnapshotReport{
		Source:      o.data,
		Output:      o.out,
		Rows:        ds.Rows(),
		Columns:     ds.NumColumns(),
		Compression: h.Compression.String(),
		BodySize:    h.BodySize,
		PayloadSize: h.PayloadSize,
		Ratio:       h.Ratio(),
		Checksum:    h.Checksum,
		Fingerprint: ds.Fingerprint(),
	})
}
