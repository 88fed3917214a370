package notification

import (
	"bytes"
	"fmt"
	"html/template"
)

type requestMailData struct {
	RecipientName string
	OwnerName     string
	TypeName      string
	StartDate     string
	EndDate       string
	Reason        string
	ResolvedBy    string
	Rejection     string
}

type resetMailData struct {
	Name     string
	ResetURL string
}

var (
	createdOwnerTmpl = template.Must(template.New("created_owner").Parse(`
<p>Hola {{.RecipientName}},</p>
<p>Tu solicitud de permiso <strong>{{.TypeName}}</strong> del {{.StartDate}} al {{.EndDate}} fue registrada y está pendiente de aprobación.</p>
<p>Motivo: {{.Reason}}</p>
`))

	createdManagerTmpl = template.Must(template.New("created_manager").Parse(`
<p>Hola {{.RecipientName}},</p>
<p><strong>{{.OwnerName}}</strong> registró una solicitud de permiso <strong>{{.TypeName}}</strong> del {{.StartDate}} al {{.EndDate}} que espera tu revisión.</p>
<p>Motivo: {{.Reason}}</p>
`))

	approvedOwnerTmpl = template.Must(template.New("approved_owner").Parse(`
<p>Hola {{.RecipientName}},</p>
<p>Tu solicitud de permiso <strong>{{.TypeName}}</strong> del {{.StartDate}} al {{.EndDate}} fue <strong>aprobada</strong>.</p>
`))

	rejectedOwnerTmpl = template.Must(template.New("rejected_owner").Parse(`
<p>Hola {{.RecipientName}},</p>
<p>Tu solicitud de permiso <strong>{{.TypeName}}</strong> del {{.StartDate}} al {{.EndDate}} fue <strong>rechazada</strong>.</p>
<p>Motivo del rechazo: {{.Rejection}}</p>
`))

	resolvedHRTmpl = template.Must(template.New("resolved_hr").Parse(`
<p>Hola {{.RecipientName}},</p>
<p>La solicitud de permiso <strong>{{.TypeName}}</strong> de {{.OwnerName}} ({{.StartDate}} al {{.EndDate}}) fue resuelta por <strong>{{.ResolvedBy}}</strong>.</p>
{{if .Rejection}}<p>Motivo del rechazo: {{.Rejection}}</p>{{end}}
`))

	passwordResetTmpl = template.Must(template.New("password_reset").Parse(`
<p>Hola {{.Name}},</p>
<p>Recibimos una solicitud para restablecer tu contraseña. El enlace vence en una hora:</p>
<p><a href="{{.ResetURL}}">Restablecer contraseña</a></p>
<p>Si no solicitaste el cambio, ignora este correo.</p>
`))
)

func render(tmpl *template.Template, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render mail template %s: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}
