// Package deploy renders the files needed to stand up river-ops on a single
// Linux host behind nginx: database bootstrap SQL, an environment file, a
// systemd unit and an nginx site.
package deploy

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"

	"github.com/spf13/afero"

	"github.com/riverkeep/river-ops/internal/utils"
)

var appNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Options describe the target host.
type Options struct {
	AppName  string
	Domain   string
	BasePath string
	User     string
	Group    string
	// DBDriver is "postgres" or "mysql".
	DBDriver string
	// RedisDB selects the redis database for sessions; negative keeps cookie sessions.
	RedisDB    int
	ListenPort int
}

func (o *Options) normalize() error {
	o.AppName = strings.ToLower(strings.TrimSpace(o.AppName))
	o.Domain = strings.ToLower(strings.TrimSpace(o.Domain))
	if !appNamePattern.MatchString(o.AppName) {
		return fmt.Errorf("app name %q must be lowercase letters, digits or underscores", o.AppName)
	}
	if o.Domain == "" {
		return errors.New("domain is required")
	}
	if o.User == "" {
		o.User = "river"
	}
	if o.Group == "" {
		o.Group = "www-data"
	}
	if o.BasePath == "" {
		o.BasePath = filepath.Join("/srv", o.AppName)
	}
	if o.ListenPort == 0 {
		o.ListenPort = 8080
	}
	switch o.DBDriver {
	case "":
		o.DBDriver = "postgres"
	case "postgres", "mysql":
	default:
		return fmt.Errorf("unsupported database driver %q", o.DBDriver)
	}
	return nil
}

// File is one rendered artefact.
type File struct {
	Name    string
	Mode    os.FileMode
	Content string
}

type bundleData struct {
	Options
	DBName        string
	DBUser        string
	DBPassword    string
	SessionSecret string
	DBPort        string
	UseRedis      bool
}

// Generate renders the bundle with fresh credentials.
func Generate(opts Options) ([]File, error) {
	if err := opts.normalize(); err != nil {
		return nil, err
	}

	password, err := utils.GeneratePassword()
	if err != nil {
		return nil, err
	}
	secret, err := utils.GenerateSecret(32)
	if err != nil {
		return nil, err
	}

	data := bundleData{
		Options:       opts,
		DBName:        opts.AppName + "_db",
		DBUser:        opts.AppName + "_user",
		DBPassword:    password,
		SessionSecret: secret,
		DBPort:        "5432",
		UseRedis:      opts.RedisDB >= 0,
	}
	sqlTemplate := postgresTemplate
	if opts.DBDriver == "mysql" {
		sqlTemplate = mysqlTemplate
		data.DBPort = "3306"
	}

	specs := []struct {
		name string
		mode os.FileMode
		tmpl *template.Template
	}{
		{"db_setup.sql", 0o600, sqlTemplate},
		{".env", 0o600, envTemplate},
		{opts.AppName + ".service", 0o644, unitTemplate},
		{"nginx_" + opts.AppName + ".conf", 0o644, nginxTemplate},
	}

	files := make([]File, 0, len(specs))
	for _, spec := range specs {
		var buf bytes.Buffer
		if err := spec.tmpl.Execute(&buf, data); err != nil {
			return nil, fmt.Errorf("failed to render %s: %w", spec.name, err)
		}
		files = append(files, File{Name: spec.name, Mode: spec.mode, Content: buf.String()})
	}
	return files, nil
}

// Write stores files under dir, creating it when missing.
func Write(fs afero.Fs, dir string, files []File) error {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	for _, f := range files {
		path := filepath.Join(dir, f.Name)
		if err := afero.WriteFile(fs, path, []byte(f.Content), f.Mode); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	return nil
}

var postgresTemplate = template.Must(template.New("postgres").Parse(`-- Create database and role
CREATE DATABASE {{.DBName}};
CREATE USER {{.DBUser}} WITH PASSWORD '{{.DBPassword}}';
GRANT ALL PRIVILEGES ON DATABASE {{.DBName}} TO {{.DBUser}};

\c {{.DBName}}

GRANT ALL ON SCHEMA public TO {{.DBUser}};
ALTER DATABASE {{.DBName}} OWNER TO {{.DBUser}};
\q
`))

var mysqlTemplate = template.Must(template.New("mysql").Parse(`CREATE DATABASE {{.DBName}} CHARACTER SET utf8mb4 COLLATE utf8mb4_unicode_ci;
CREATE USER '{{.DBUser}}'@'localhost' IDENTIFIED BY '{{.DBPassword}}';
GRANT ALL PRIVILEGES ON {{.DBName}}.* TO '{{.DBUser}}'@'localhost';
FLUSH PRIVILEGES;
`))

var envTemplate = template.Must(template.New("env").Parse(`GIN_MODE=release
LISTEN_ADDR=127.0.0.1:{{.ListenPort}}
DB_DRIVER={{.DBDriver}}
DB_HOST=localhost
DB_PORT={{.DBPort}}
DB_NAME={{.DBName}}
DB_USER={{.DBUser}}
DB_PASSWORD={{.DBPassword}}
SESSION_SECRET={{.SessionSecret}}
{{- if .UseRedis}}
SESSION_STORE=redis
REDIS_HOST=localhost
REDIS_PORT=6379
REDIS_DB={{.RedisDB}}
{{- else}}
SESSION_STORE=cookie
{{- end}}
MEDIA_ROOT={{.BasePath}}/media
LOG_FORMAT=json
`))

var unitTemplate = template.Must(template.New("unit").Parse(`[Unit]
Description=river-ops ({{.AppName}})
After=network.target

[Service]
Type=simple
User={{.User}}
Group={{.Group}}
WorkingDirectory={{.BasePath}}
EnvironmentFile={{.BasePath}}/.env
ExecStart={{.BasePath}}/river-ops serve
Restart=always

[Install]
WantedBy=multi-user.target
`))

var nginxTemplate = template.Must(template.New("nginx").Parse(`server {
    listen 80;
    server_name {{.Domain}};

    client_max_body_size 25m;

    location = /favicon.ico { access_log off; log_not_found off; }

    location /media/ {
        alias {{.BasePath}}/media/;
    }

    location / {
        proxy_set_header Host $host;
        proxy_set_header X-Forwarded-For $proxy_add_x_forwarded_for;
        proxy_set_header X-Forwarded-Proto $scheme;
        proxy_pass http://127.0.0.1:{{.ListenPort}};
    }
}
`))
