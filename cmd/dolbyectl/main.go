package main

import (
	"bytes"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"encoding/xml"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"example.com/dolbyectl/internal/batchrun"
	"example.com/dolbyectl/internal/common"
	"example.com/dolbyectl/internal/crypto"
	"example.com/dolbyectl/internal/dolbye"
	"example.com/dolbyectl/internal/dolbye/bitio"
	"example.com/dolbyectl/internal/dolbyeconfig"
	"example.com/dolbyectl/internal/dolbyereport"
	"example.com/dolbyectl/internal/manifest"
	"example.com/dolbyectl/internal/sadm"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}
	cmd := os.Args[1]
	switch cmd {
	case "ingest":
		ingestCmd(os.Args[2:])
	case "report":
		reportCmd(os.Args[2:])
	case "manifest":
		manifestCmd(os.Args[2:])
	case "verify-signature":
		verifySignatureCmd(os.Args[2:])
	case "batch":
		batchCmd(os.Args[2:])
	default:
		usage()
	}
}

func usage() {
	fmt.Printf(`dolbyectl %s (built %s) <command> [options]

Commands:
  ingest    --in <file.de> --out <dir> [--meters] [--config <tolerance.yaml>] [--profile <name>] [--diagnostics <diagnostics.jsonl>] [--acceptance <acceptance.json>]
  report    --acceptance <acceptance.json> [--pdf <out.pdf>] [--qr <out.png> --hash <hex>]
  manifest  --inputs <comma-separated> --out <manifest.json> [--sign --key <key.pem> --cert <cert.pem> --jws-out <file>]
  verify-signature --manifest <manifest.json> --jws <signature.jws> --cert <cert.pem>
  batch     --in <dir> --out-dir <dir> [--workers <n>] [--config <tolerance.yaml>] [--profile <name>]
`, version, buildDate)
}

// ingestCmd runs a Dolby E elementary stream through the frame sequencer,
// projecting every frame to a Serial ADM document and collecting an
// acceptance report, in the style of ch10ctl's validateCmd.
func ingestCmd(args []string) {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	in := fs.String("in", "", "input Dolby E elementary stream")
	out := fs.String("out", "", "output directory for one frame.sadm.xml per frame")
	includeMeters := fs.Bool("meters", false, "include peak/RMS meter readings in the dbmd extension")
	configPath := fs.String("config", "", "tolerance profile YAML file")
	profileName := fs.String("profile", "", "tolerance profile name (defaults to the config's default)")
	outDiag := fs.String("diagnostics", "diagnostics.jsonl", "diagnostics output")
	outAcc := fs.String("acceptance", "acceptance_report.json", "acceptance report json")
	metricsFlag := fs.Bool("metrics", false, "print ingest throughput metrics")
	fs.Parse(args)

	if *in == "" || *out == "" {
		fmt.Println("required: --in, --out")
		os.Exit(1)
	}

	var profile dolbyeconfig.ToleranceProfile
	if *configPath != "" {
		doc, err := dolbyeconfig.Load(*configPath)
		if err != nil {
			fmt.Println("load config:", err)
			os.Exit(1)
		}
		profile = doc.Select(*profileName)
	}

	if err := os.MkdirAll(*out, 0755); err != nil {
		fmt.Println("mkdir out:", err)
		os.Exit(1)
	}

	f, err := os.Open(*in)
	if err != nil {
		fmt.Println("open input:", err)
		os.Exit(1)
	}
	defer f.Close()

	metrics := common.NewMetrics()
	if info, err := f.Stat(); err == nil {
		metrics.SetTotalBytes(info.Size())
	}
	metrics.Start()

	var findings []dolbye.Diagnostic
	var frames []dolbyereport.FrameSummary

	diag := func(d dolbye.Diagnostic) {
		if profile.Allows(d.Code) {
			return
		}
		findings = append(findings, d)
	}

	r := bitio.NewReader(f)
	seq := dolbye.NewSequencer(r, diag)

	frameIndex := 0
	for {
		fi, err := seq.GetNextFrame()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, dolbye.ErrNoPreamble) {
				break
			}
			fmt.Println("parse frame:", err)
			os.Exit(1)
		}

		var descs [dolbye.MaxPrograms]string
		for pgm := 0; pgm < dolbye.MaxPrograms; pgm++ {
			descs[pgm] = seq.Description(pgm)
		}

		doc := sadm.Project(fi, descs, frameIndex, sadm.Options{IncludeMeters: *includeMeters})
		xmlBytes, err := xmlMarshal(doc)
		if err != nil {
			fmt.Println("marshal sadm:", err)
			os.Exit(1)
		}
		xmlPath := filepath.Join(*out, fmt.Sprintf("frame_%08d.sadm.xml", frameIndex))
		if err := os.WriteFile(xmlPath, xmlBytes, 0644); err != nil {
			fmt.Println("write sadm:", err)
			os.Exit(1)
		}

		frameFindings := 0
		for _, d := range findings {
			if d.FrameIndex == frameIndex {
				frameFindings++
			}
		}
		frames = append(frames, dolbyereport.FrameSummary{
			FrameIndex:    frameIndex,
			ProgramConfig: fi.ProgramConfig,
			FrameRateCode: fi.FrameRateCode,
			NPrograms:     fi.NPrograms,
			NChannels:     fi.NChannels,
			Findings:      frameFindings,
		})
		metrics.AddFrame(1)
		frameIndex++
	}
	metrics.Stop()

	rep := dolbyereport.Build(frames, findings)
	if err := dolbyereport.SaveJSON(rep, *outAcc); err != nil {
		fmt.Println("write acceptance:", err)
		os.Exit(1)
	}
	diagFile, err := os.Create(*outDiag)
	if err != nil {
		fmt.Println("create diagnostics:", err)
		os.Exit(1)
	}
	defer diagFile.Close()
	if err := dolbyereport.WriteNDJSON(diagFile, findings); err != nil {
		fmt.Println("write diagnostics:", err)
		os.Exit(1)
	}

	fmt.Printf("PASS=%v, frames=%d, errors=%d, warnings=%d\n", rep.Summary.Pass, rep.Summary.TotalFrames, rep.Summary.Errors, rep.Summary.Warnings)
	if *metricsFlag {
		snap := metrics.Snapshot()
		fmt.Printf("Metrics: duration=%s frames=%d resyncs=%d processed=%s\n",
			snap.Duration.Round(time.Millisecond), snap.Frames, snap.Resyncs, common.FormatBytes(snap.Bytes))
	}
}

func xmlMarshal(doc sadm.Document) ([]byte, error) {
	enc, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.WriteString(xmlHeader)
	buf.Write(enc)
	return buf.Bytes(), nil
}

const xmlHeader = `<?xml version="1.0" encoding="UTF-8"?>` + "\n"

func reportCmd(args []string) {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	accPath := fs.String("acceptance", "", "acceptance_report.json")
	pdfPath := fs.String("pdf", "", "output acceptance report PDF")
	qrPath := fs.String("qr", "", "output QR code PNG")
	hash := fs.String("hash", "", "document hash to encode in the QR code (required with --qr)")
	fs.Parse(args)

	if *accPath == "" {
		fmt.Println("required: --acceptance")
		os.Exit(1)
	}
	data, err := os.ReadFile(*accPath)
	if err != nil {
		fmt.Println("read acceptance:", err)
		os.Exit(1)
	}
	var rep dolbyereport.AcceptanceReport
	if err := json.Unmarshal(data, &rep); err != nil {
		fmt.Println("parse acceptance:", err)
		os.Exit(1)
	}

	if *pdfPath != "" {
		if err := dolbyereport.SavePDF(rep, *pdfPath); err != nil {
			fmt.Println("write pdf:", err)
			os.Exit(1)
		}
		fmt.Println("Wrote", *pdfPath)
	}

	if *qrPath != "" {
		if *hash == "" {
			fmt.Println("--qr requires --hash")
			os.Exit(1)
		}
		png, err := dolbyereport.DocumentHashToQR(*hash, 256)
		if err != nil {
			fmt.Println("build qr:", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*qrPath, png, 0644); err != nil {
			fmt.Println("write qr:", err)
			os.Exit(1)
		}
		fmt.Println("Wrote", *qrPath)
	}

	fmt.Printf("Acceptance: pass=%v errors=%d warnings=%d frames=%d\n", rep.Summary.Pass, rep.Summary.Errors, rep.Summary.Warnings, rep.Summary.TotalFrames)
}

func manifestCmd(args []string) {
	fs := flag.NewFlagSet("manifest", flag.ExitOnError)
	inputs := fs.String("inputs", "", "comma-separated paths")
	out := fs.String("out", "manifest.json", "output json")
	sign := fs.Bool("sign", false, "sign manifest (detached JWS over JSON)")
	keyPath := fs.String("key", "", "PEM private key for signing (requires --sign)")
	certPath := fs.String("cert", "", "PEM certificate describing signer (requires --sign)")
	jwsOut := fs.String("jws-out", "", "output JWS file (defaults to manifest path with .jws)")
	fs.Parse(args)

	if *inputs == "" {
		fmt.Println("required: --inputs")
		os.Exit(1)
	}

	var paths []string
	for _, p := range strings.Split(*inputs, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		paths = append(paths, p)
	}
	if len(paths) == 0 {
		fmt.Println("no input paths specified")
		os.Exit(1)
	}

	m, err := manifest.Build(paths)
	if err != nil {
		fmt.Println("manifest build:", err)
		os.Exit(1)
	}

	if !*sign {
		if err := manifest.Save(m, *out); err != nil {
			fmt.Println("manifest save:", err)
			os.Exit(1)
		}
		fmt.Println("Wrote", *out)
		return
	}

	if *keyPath == "" || *certPath == "" {
		fmt.Println("--sign requires --key and --cert")
		os.Exit(1)
	}

	keyBytes, err := os.ReadFile(*keyPath)
	if err != nil {
		fmt.Println("read key:", err)
		os.Exit(1)
	}
	certBytes, err := os.ReadFile(*certPath)
	if err != nil {
		fmt.Println("read cert:", err)
		os.Exit(1)
	}

	sigPath := *jwsOut
	if sigPath == "" {
		ext := filepath.Ext(*out)
		if ext != "" {
			sigPath = (*out)[:len(*out)-len(ext)] + ".jws"
		} else {
			sigPath = *out + ".jws"
		}
	}

	block, _ := pem.Decode(certBytes)
	if block == nil {
		fmt.Println("parse cert: no PEM block found")
		os.Exit(1)
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		fmt.Println("parse cert:", err)
		os.Exit(1)
	}

	m.Signature = &manifest.Signature{
		Type:        "jws-detached",
		CertSubject: cert.Subject.String(),
		Issuer:      cert.Issuer.String(),
		SignatureFile: sigPath,
	}

	payload, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		fmt.Println("manifest marshal:", err)
		os.Exit(1)
	}

	jws, err := crypto.SignDetachedJWS(payload, keyBytes)
	if err != nil {
		fmt.Println("manifest sign:", err)
		os.Exit(1)
	}
	jwsBytes, err := json.MarshalIndent(jws, "", "  ")
	if err != nil {
		fmt.Println("jws marshal:", err)
		os.Exit(1)
	}

	if err := os.WriteFile(sigPath, jwsBytes, 0644); err != nil {
		fmt.Println("write jws:", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, payload, 0644); err != nil {
		fmt.Println("write manifest:", err)
		os.Exit(1)
	}

	fmt.Println("Wrote", *out)
	fmt.Println("Wrote signature", sigPath)
}

func verifySignatureCmd(args []string) {
	fs := flag.NewFlagSet("verify-signature", flag.ExitOnError)
	manifestPath := fs.String("manifest", "", "manifest JSON file")
	jwsPath := fs.String("jws", "", "manifest JWS signature file")
	certPath := fs.String("cert", "", "signer certificate (PEM)")
	fs.Parse(args)

	if *manifestPath == "" || *jwsPath == "" || *certPath == "" {
		fmt.Println("required: --manifest, --jws, --cert")
		os.Exit(1)
	}

	manifestBytes, err := os.ReadFile(*manifestPath)
	if err != nil {
		fmt.Println("read manifest:", err)
		os.Exit(1)
	}
	jwsBytes, err := os.ReadFile(*jwsPath)
	if err != nil {
		fmt.Println("read jws:", err)
		os.Exit(1)
	}
	certBytes, err := os.ReadFile(*certPath)
	if err != nil {
		fmt.Println("read cert:", err)
		os.Exit(1)
	}

	var jwsObj crypto.JWS
	if err := json.Unmarshal(jwsBytes, &jwsObj); err != nil {
		fmt.Println("parse jws:", err)
		os.Exit(1)
	}

	if err := crypto.VerifyDetachedJWS(manifestBytes, jwsObj, certBytes); err != nil {
		fmt.Println("verify signature:", err)
		os.Exit(1)
	}
	fmt.Println("Signature OK")
}

// batchCmd runs ingestCmd's pipeline across every elementary stream file in
// a directory, bounded to a worker pool, and writes a rotating batch log.
func batchCmd(args []string) {
	fs := flag.NewFlagSet("batch", flag.ExitOnError)
	inDir := fs.String("in", ".", "input directory")
	outDir := fs.String("out-dir", "out", "results directory")
	workers := fs.Int("workers", 4, "worker count")
	configPath := fs.String("config", "", "tolerance profile YAML file")
	profileName := fs.String("profile", "", "tolerance profile name")
	logPath := fs.String("log", "", "rotating batch log file (defaults to <out-dir>/batch.log)")
	fs.Parse(args)

	var profile dolbyeconfig.ToleranceProfile
	if *configPath != "" {
		doc, err := dolbyeconfig.Load(*configPath)
		if err != nil {
			fmt.Println("load config:", err)
			os.Exit(1)
		}
		profile = doc.Select(*profileName)
		if profile.MaxWorkers > 0 {
			*workers = profile.MaxWorkers
		}
	}

	if err := os.MkdirAll(*outDir, 0755); err != nil {
		fmt.Println("mkdir out-dir:", err)
		os.Exit(1)
	}

	if *logPath == "" {
		*logPath = filepath.Join(*outDir, "batch.log")
	}
	rotating := common.RotatingLog(*logPath, 10, 5, 30)
	defer rotating.Close()

	entries, err := os.ReadDir(*inDir)
	if err != nil {
		fmt.Println("read in dir:", err)
		os.Exit(1)
	}

	var jobs []batchrun.Job
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !hasDolbyEExt(name) {
			continue
		}
		jobOut := filepath.Join(*outDir, strings.TrimSuffix(name, filepath.Ext(name)))
		jobs = append(jobs, batchrun.Job{InputPath: filepath.Join(*inDir, name), OutDir: jobOut})
	}

	includeMeters := !profile.MeterReportOnly
	pool := batchrun.NewPool(*workers, func(job batchrun.Job) error {
		return runIngestJob(job, profile, includeMeters)
	})
	results := pool.Execute(jobs)

	var failed int
	for _, r := range results {
		if r.Err != nil {
			failed++
			common.Logf("job %s failed: %v", r.Job.InputPath, r.Err)
		} else {
			common.Logf("job %s ok", r.Job.InputPath)
		}
	}

	snap := pool.Metrics.Snapshot()
	fmt.Printf("Batch: jobs=%d failed=%d duration=%s\n", len(jobs), failed, snap.Duration.Round(time.Millisecond))
	if failed > 0 {
		os.Exit(1)
	}
}

func hasDolbyEExt(name string) bool {
	for _, ext := range []string{".de", ".dolbye", ".dbe"} {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

func runIngestJob(job batchrun.Job, profile dolbyeconfig.ToleranceProfile, includeMeters bool) error {
	f, err := os.Open(job.InputPath)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := os.MkdirAll(job.OutDir, 0755); err != nil {
		return err
	}

	var findings []dolbye.Diagnostic
	var frames []dolbyereport.FrameSummary
	diag := func(d dolbye.Diagnostic) {
		if profile.Allows(d.Code) {
			return
		}
		findings = append(findings, d)
	}

	r := bitio.NewReader(f)
	seq := dolbye.NewSequencer(r, diag)

	frameIndex := 0
	for {
		fi, err := seq.GetNextFrame()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, dolbye.ErrNoPreamble) {
				break
			}
			return err
		}
		var descs [dolbye.MaxPrograms]string
		for pgm := 0; pgm < dolbye.MaxPrograms; pgm++ {
			descs[pgm] = seq.Description(pgm)
		}
		doc := sadm.Project(fi, descs, frameIndex, sadm.Options{IncludeMeters: includeMeters})
		xmlBytes, err := xmlMarshal(doc)
		if err != nil {
			return err
		}
		xmlPath := filepath.Join(job.OutDir, "frame_"+strconv.Itoa(frameIndex)+".sadm.xml")
		if err := os.WriteFile(xmlPath, xmlBytes, 0644); err != nil {
			return err
		}
		frames = append(frames, dolbyereport.FrameSummary{
			FrameIndex:    frameIndex,
			ProgramConfig: fi.ProgramConfig,
			FrameRateCode: fi.FrameRateCode,
			NPrograms:     fi.NPrograms,
			NChannels:     fi.NChannels,
		})
		frameIndex++
	}

	rep := dolbyereport.Build(frames, findings)
	return dolbyereport.SaveJSON(rep, filepath.Join(job.OutDir, "acceptance_report.json"))
}
