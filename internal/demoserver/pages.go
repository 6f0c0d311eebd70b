package demoserver

import "html/template"

// pageData feeds every console template.
type pageData struct {
	Base        string
	CSRF        string
	Title       string
	Script      string
	Validation  string
	LoginFailed bool
	Errors      []string
	Submitted   bool
	ResultText  string
	Downloads   []string
}

var pages = template.Must(template.New("layout").Parse(`{{define "head"}}<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <meta name="_csrf" content="{{.CSRF}}">
    <meta name="_csrf_header" content="X-CSRF-TOKEN">
    <title>hybris administration console | {{.Title}}</title>
</head>
<body>
{{end}}
{{define "foot"}}</body>
</html>
{{end}}
{{define "login"}}{{template "head" .}}
    <h1>Login</h1>
    {{if .LoginFailed}}<p class="loginError">Invalid username or password.</p>{{end}}
    <form method="POST" action="{{.Base}}/j_spring_security_check">
        <input type="text" name="j_username">
        <input type="password" name="j_password">
        <input type="hidden" name="_csrf" value="{{.CSRF}}">
        <button type="submit">login</button>
    </form>
{{template "foot" .}}{{end}}
{{define "home"}}{{template "head" .}}
    <h1>hybris administration console</h1>
    <ul>
        <li><a href="{{.Base}}/impex/import">ImpEx import</a></li>
        <li><a href="{{.Base}}/impex/export">ImpEx export</a></li>
    </ul>
{{template "foot" .}}{{end}}
{{define "impex"}}{{template "head" .}}
    <h1>{{.Title}}</h1>
    {{range .Errors}}<div class="error">{{.}}</div>
    {{end}}
    <form method="POST">
        <textarea name="scriptContent">{{.Script}}</textarea>
        <select name="validationEnum"><option selected>{{.Validation}}</option></select>
        <input type="hidden" name="_csrf" value="{{.CSRF}}">
        <button type="submit">{{.Title}}</button>
    </form>
    {{if .Submitted}}
    <div class="impexResult">
        <span class="resultLabel">Result</span>
        <pre>{{.ResultText}}</pre>
    </div>
    {{end}}
    {{if .Downloads}}
    <div id="downloadExportResultData">
        {{range .Downloads}}<a href="{{.}}">{{.}}</a>
        {{end}}
    </div>
    {{end}}
{{template "foot" .}}{{end}}`))
