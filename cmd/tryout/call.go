package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"pkt.systems/tryout/internal/console"
)

const defaultBaseURL = "http://localhost:8000"

func runCall(ctx context.Context, args []string, e env) error {
	fs := newFlagSet("call", e)
	var (
		layout    layoutFlags
		catalog   string
		baseURL   string
		method    string
		params    []string
		headers   []string
		files     []string
		jsonBody  bool
		insecure  bool
		verbose   bool
		noHeaders bool
		timeout   time.Duration
		credPath  string
	)
	fs.StringVar(&catalog, "catalog", envDefault(e, envCatalog, ""), "endpoint catalog (YAML or JSON), env "+envCatalog)
	fs.StringVar(&baseURL, "base-url", envDefault(e, envBaseURL, defaultBaseURL), "API base URL, env "+envBaseURL)
	fs.StringVarP(&method, "method", "X", "GET", "HTTP method")
	fs.StringArrayVarP(&params, "param", "p", nil, "parameter as name=value (repeatable)")
	fs.StringArrayVarP(&headers, "header", "H", nil, "header as name=value (repeatable)")
	fs.StringArrayVarP(&files, "file", "F", nil, "file field as name=path (repeatable)")
	fs.BoolVar(&jsonBody, "json", false, "send body fields as a JSON object")
	fs.BoolVarP(&insecure, "insecure", "k", false, "skip TLS certificate verification")
	fs.BoolVarP(&verbose, "verbose", "v", false, "log requests and responses")
	fs.BoolVar(&noHeaders, "no-headers", false, "omit response headers")
	fs.DurationVar(&timeout, "timeout", 30*time.Second, "request timeout")
	fs.StringVar(&credPath, "credentials", "", "credential file (default $XDG_CONFIG_HOME/tryout/credentials.json)")
	layout.register(fs)
	fs.Usage = func() {
		fmt.Fprintln(e.stderr, "Usage: tryout call [flags] <path>")
		fs.PrintDefaults()
	}
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return usagef("call: expected exactly one endpoint path")
	}
	path := fs.Arg(0)

	m, err := console.ParseMethod(method)
	if err != nil {
		return usageError{err}
	}
	in := console.Input{BaseURL: baseURL, Method: m}
	if jsonBody {
		in.BodyMode = console.BodyJSON
	}
	if in.Params, err = pairs("param", params); err != nil {
		return err
	}
	if in.Headers, err = pairs("header", headers); err != nil {
		return err
	}
	if in.Files, err = pairs("file", files); err != nil {
		return err
	}
	opts, err := layout.options(e.stdout, e)
	if err != nil {
		return err
	}

	if catalog != "" {
		c, err := console.LoadCatalog(catalog)
		if err != nil {
			return err
		}
		if in.Endpoint, err = c.Lookup(path); err != nil {
			return err
		}
	} else {
		in.Endpoint = console.AdHocEndpoint(path, m)
	}

	store, err := credentialStore(credPath)
	if err != nil {
		return err
	}
	in.Credentials = store

	req, err := console.BuildRequest(ctx, in)
	if err != nil {
		return err
	}
	logger := newLogger(e, verbose)
	client := console.NewClient(console.ClientOptions{
		Timeout:  timeout,
		Insecure: insecure,
		Verbose:  verbose,
		Logger:   logger,
	})
	resp, err := client.Do(ctx, req)
	if err != nil {
		return err
	}
	return console.Render(e.stdout, resp, console.RenderOptions{
		Format:    opts,
		NoHeaders: noHeaders,
		Color:     opts.Palette != "none",
	})
}

// pairs splits name=value flags.
func pairs(kind string, vals []string) (map[string]string, error) {
	if len(vals) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(vals))
	for _, v := range vals {
		name, value, ok := strings.Cut(v, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, usagef("%s %q: expected name=value", kind, v)
		}
		out[name] = value
	}
	return out, nil
}

func runEndpoints(_ context.Context, args []string, e env) error {
	fs := newFlagSet("endpoints", e)
	var catalog string
	fs.StringVar(&catalog, "catalog", envDefault(e, envCatalog, ""), "endpoint catalog (YAML or JSON), env "+envCatalog)
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if catalog == "" {
		return usagef("endpoints: --catalog is required")
	}
	c, err := console.LoadCatalog(catalog)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(e.stdout, 0, 4, 2, ' ', 0)
	for _, ep := range c.Endpoints {
		if ep.Desc != "" {
			fmt.Fprintf(tw, "%s\t%s\n", ep.Path, ep.Desc)
		} else {
			fmt.Fprintf(tw, "%s\t\n", ep.Path)
		}
		for _, m := range ep.Methods() {
			fmt.Fprintf(tw, "  %s\t\n", m)
			params, headers, _ := ep.Fields(m)
			writeFields(tw, "param", params)
			writeFields(tw, "header", headers)
		}
	}
	return tw.Flush()
}

func writeFields(tw *tabwriter.Writer, kind string, list console.ParameterList) {
	for _, p := range list {
		var attrs []string
		if p.ParamType != "" {
			attrs = append(attrs, p.ParamType)
		}
		if p.Required {
			attrs = append(attrs, "required")
		}
		if p.Default != "" {
			attrs = append(attrs, "default="+p.Default)
		}
		fmt.Fprintf(tw, "    %s %s\t%s\t%s\n", kind, p.FieldName, strings.Join(attrs, ","), p.Description)
	}
}
