package util

import "embed"

//go:embed template/otp.html
var TemplateFS embed.FS
