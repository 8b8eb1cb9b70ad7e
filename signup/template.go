package signup

import (
	"html/template"

	"github.com/pkevan/wp-chargify/form"
)

type pageField struct {
	Key   string
	Label string
	Input string // the input type, or "" for display-only fields
	Value string
}

type formPage struct {
	Fields     []pageField
	NonceField string
	Nonce      string
	ObjectID   string
}

type donePage struct {
	SubscriptionID int64
	State          string
	Email          string
}

func inputType(t form.Type) string {
	switch t {
	case form.Email:
		return "email"
	case form.Checkbox:
		return "checkbox"
	case form.Password:
		return "password"
	case form.Hidden:
		return "hidden"
	case form.Display:
		return ""
	}
	return "text"
}

var formTmpl = template.Must(template.New("form").Parse(`<!DOCTYPE html>
<html>
<head><title>Sign up</title></head>
<body>
<form class="cmb-form" method="post">
{{- range .Fields}}
{{- if eq .Input ""}}
{{- if .Value}}
<p class="{{.Key}}">{{with .Label}}{{.}}: {{end}}{{.Value}}</p>
{{- end}}
{{- else if eq .Input "hidden"}}
<input type="hidden" name="{{.Key}}" value="{{.Value}}">
{{- else if eq .Input "checkbox"}}
<label><input type="checkbox" name="{{.Key}}" value="on"{{if .Value}} checked{{end}}> {{.Label}}</label>
{{- else}}
<label>{{.Label}} <input type="{{.Input}}" name="{{.Key}}" value="{{.Value}}"></label>
{{- end}}
{{- end}}
<input type="hidden" name="object_id" value="{{.ObjectID}}">
<input type="hidden" name="{{.NonceField}}" value="{{.Nonce}}">
<input type="submit" name="submit-cmb" value="Sign up">
</form>
</body>
</html>
`))

var doneTmpl = template.Must(template.New("done").Parse(`<!DOCTYPE html>
<html>
<head><title>Subscribed</title></head>
<body>
<p>Thanks! Subscription {{.SubscriptionID}} is {{.State}}. We've set up an account for {{.Email}}.</p>
</body>
</html>
`))
