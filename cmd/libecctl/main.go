package main

import (
	"fmt"
	"log"
	"os"

	"github.com/pkg/errors"
	"github.com/urfave/cli"

	libec "github.com/xtaci/libec"
)

// VERSION is injected by buildflags, the same convention kcptun's own
// cmd binaries use.
var VERSION = "SELFBUILD"

func checkError(err error) {
	if err != nil {
		log.Println(errors.WithStack(err))
		os.Exit(-1)
	}
}

func backendByName(name string) (libec.BackendID, error) {
	switch name {
	case "null":
		return libec.NullBackend, nil
	case "rs_vand":
		return libec.LiberasurecodeRSVand, nil
	case "rs_cauchy":
		return libec.JerasureRSCauchy, nil
	case "xor_hd":
		return libec.FlatXORHD, nil
	default:
		return 0, errors.Errorf("unknown backend name %q", name)
	}
}

func chksumByName(name string) libec.ChksumType {
	switch name {
	case "crc32":
		return libec.ChksumCRC32
	case "md5":
		return libec.ChksumMD5
	default:
		return libec.ChksumNone
	}
}

func ecArgsFromConfig(cfg Config) (libec.BackendID, libec.EcArgs) {
	id, err := backendByName(cfg.Backend)
	checkError(err)
	args := libec.EcArgs{
		K:                   cfg.K,
		M:                   cfg.M,
		W:                   cfg.W,
		HD:                  cfg.HD,
		ChksumType:          chksumByName(cfg.Chksum),
		ForceMetadataChecks: cfg.ForceCheck,
	}
	return id, args
}

func commonFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{Name: "backend", Value: "rs_vand", Usage: "null, rs_vand, rs_cauchy, xor_hd"},
		cli.IntFlag{Name: "k", Value: 10, Usage: "number of data fragments"},
		cli.IntFlag{Name: "m", Value: 4, Usage: "number of parity fragments"},
		cli.IntFlag{Name: "w", Value: 16, Usage: "galois field width in bits"},
		cli.IntFlag{Name: "hd", Value: 3, Usage: "hamming distance, xor_hd only"},
		cli.StringFlag{Name: "chksum", Value: "crc32", Usage: "none, crc32, md5"},
		cli.BoolFlag{Name: "forcecheck", Usage: "reject fragments failing header validation instead of treating them as missing"},
		cli.StringFlag{Name: "c", Value: "", Usage: "config from json file, overrides the flags above"},
	}
}

func loadConfig(c *cli.Context) Config {
	cfg := Config{
		Backend:    c.String("backend"),
		K:          c.Int("k"),
		M:          c.Int("m"),
		W:          c.Int("w"),
		HD:         c.Int("hd"),
		Chksum:     c.String("chksum"),
		ForceCheck: c.Bool("forcecheck"),
	}
	if c.String("c") != "" {
		checkError(parseJSONConfig(&cfg, c.String("c")))
	}
	return cfg
}

func main() {
	if VERSION == "SELFBUILD" {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}

	myApp := cli.NewApp()
	myApp.Name = "libecctl"
	myApp.Usage = "erasure-code a file into fragments, or recover one from survivors"
	myApp.Version = VERSION

	myApp.Commands = []cli.Command{
		{
			Name:  "encode",
			Usage: "split a file into k+m fragments",
			Flags: append(commonFlags(),
				cli.StringFlag{Name: "in", Usage: "input file"},
				cli.StringFlag{Name: "out", Usage: "output directory for fragment.NNN files"},
			),
			Action: actionEncode,
		},
		{
			Name:  "decode",
			Usage: "reassemble the original file from a directory of fragments",
			Flags: append(commonFlags(),
				cli.StringFlag{Name: "in", Usage: "directory containing fragment.NNN files"},
				cli.StringFlag{Name: "out", Usage: "output file"},
			),
			Action: actionDecode,
		},
		{
			Name:  "reconstruct",
			Usage: "rebuild a single missing fragment from its survivors",
			Flags: append(commonFlags(),
				cli.StringFlag{Name: "in", Usage: "directory containing the surviving fragment.NNN files"},
				cli.IntFlag{Name: "target", Usage: "index of the fragment to rebuild"},
			),
			Action: actionReconstruct,
		},
	}

	checkError(myApp.Run(os.Args))
}

func actionEncode(c *cli.Context) error {
	cfg := loadConfig(c)
	id, args := ecArgsFromConfig(cfg)

	in := c.String("in")
	out := c.String("out")
	if in == "" || out == "" {
		return errors.New("encode requires -in and -out")
	}

	payload, err := os.ReadFile(in)
	if err != nil {
		return err
	}

	desc, err := libec.Create(id, args)
	if err != nil {
		return err
	}
	defer libec.Destroy(desc)

	frags, err := libec.Encode(desc, payload)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(out, 0o755); err != nil {
		return err
	}
	for i, f := range frags {
		path := fmt.Sprintf("%s/fragment.%03d", out, i)
		if err := os.WriteFile(path, f, 0o644); err != nil {
			return err
		}
	}
	log.Printf("wrote %d fragments to %s", len(frags), out)
	return nil
}

func actionDecode(c *cli.Context) error {
	cfg := loadConfig(c)
	id, args := ecArgsFromConfig(cfg)

	in := c.String("in")
	out := c.String("out")
	if in == "" || out == "" {
		return errors.New("decode requires -in and -out")
	}

	desc, err := libec.Create(id, args)
	if err != nil {
		return err
	}
	defer libec.Destroy(desc)

	frags := readFragments(in, args.K+args.M)
	payload, err := libec.Decode(desc, frags, false)
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, payload, 0o644); err != nil {
		return err
	}
	log.Printf("wrote %d bytes to %s", len(payload), out)
	return nil
}

func actionReconstruct(c *cli.Context) error {
	cfg := loadConfig(c)
	id, args := ecArgsFromConfig(cfg)

	in := c.String("in")
	target := c.Int("target")
	if in == "" {
		return errors.New("reconstruct requires -in")
	}

	desc, err := libec.Create(id, args)
	if err != nil {
		return err
	}
	defer libec.Destroy(desc)

	frags := readFragments(in, args.K+args.M)
	rebuilt, err := libec.ReconstructFragment(desc, frags, target)
	if err != nil {
		return err
	}
	path := fmt.Sprintf("%s/fragment.%03d", in, target)
	if err := os.WriteFile(path, rebuilt, 0o644); err != nil {
		return err
	}
	log.Printf("reconstructed fragment %d into %s", target, path)
	return nil
}

// readFragments loads fragment.NNN files from dir, leaving a nil entry for
// any index whose file is absent — the frontend's partition/prepareForDecode
// step treats those as missing.
func readFragments(dir string, n int) []libec.Fragment {
	frags := make([]libec.Fragment, n)
	for i := 0; i < n; i++ {
		path := fmt.Sprintf("%s/fragment.%03d", dir, i)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		frags[i] = libec.Fragment(data)
	}
	return frags
}
