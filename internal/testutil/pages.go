package testutil

const indexPage = `<html>
<head>
<title>Hello, world!</title>
</head>
<body>
Hello, world!
<p>
These are the twill tests.
<p>
This is visit #%d.
<p>
You are logged in as "%s".
<p>
<a href="./increment">increment</a>
<p>
<a href="logout">log out</a>
</body>
</html>
`

const loginPage = `<form method=POST>Log in:
<input type=text name=username value="">
<p><input type=submit name=nosubmit2 value="don't submit">
<p><input type=submit name=submit value="submit me">
<p><input type=image name='submit you' src=DNE.gif>
</form>`

const multiSubmitPage = `<form method=POST>%s
<input type=submit name=sub_a value=sub_a>
<input type=submit name=sub_b value=sub_b>
</form>`

const checkboxesPage = `<form method=POST>
<input type="checkbox" name="checkboxtest" value="one">
<input type="checkbox" name="checkboxtest" value="two">
<input type="checkbox" name="checkboxtest" value="three">
<input type=submit value=post>
</form>
`

const simpleCheckboxPage = `<form method=POST>
<input type="checkbox" name="checkboxtest">
<input type=submit value=post>
</form>
`

const uploadPage = `<form method=POST action=upload_file enctype=multipart/form-data>
<input type=text name=note>
<input type=file name=upload>
<input type=submit value=send>
</form>
`

// latin1Page is served as iso-8859-1; "\xe9" is e-acute.
const latin1Page = "<html><head><title>caf\xe9</title></head><body>\n" +
	"<form method=POST action=/display_post>\n" +
	"<input type=text name=word>\n" +
	"<input type=submit value=go>\n" +
	"</form></body></html>"

var staticPages = map[string]string{
	"/test_refresh":  "<meta http-equiv=\"refresh\" content=\"2; url=./login\">\nhello, world.\n",
	"/test_refresh2": "<META HTTP-EQUIV=\"REFRESH\" CONTENT=\"2; URL=./login\">\nhello, world.\n",
	"/test_refresh3": "<meta http-equiv=\"refresh\" content=\"2; url=./test_refresh3\">\nhello, world.\n",
	"/test_refresh4": `<html><head><title>o2.ie</title>
<meta http-equiv="refresh" content="0;URL=/login">
<meta http-equiv="Content-Type" content="text/html; charset=iso-8859-1">
</head><body></body></html>`,
	"/test_refresh5": `<html><head><title>o2.ie</title>
<meta http-equiv="refresh" content="0;'URL=/login'">
</head><body></body></html>`,
	"/refresh_ping": "<meta http-equiv=\"refresh\" content=\"0; url=/refresh_pong\">ping",
	"/refresh_pong": "<meta http-equiv=\"refresh\" content=\"0; url=/refresh_ping\">pong",

	"/broken_form_1": "<form>\n<input type=text name=blah value=thus>\n",
	"/broken_form_2": "<form>\n<table>\n<tr><td>\n<input name='broken'>\n</td>\n</form>\n</tr>\n</form>\n",
	"/broken_form_3": "<table>\n<tr><td>\n<input name='broken'>\n</td>\n</form>\n</tr>\n</form>\n",
	"/broken_form_4": "<font>\n<INPUT>\n\n<FORM>\n<input type=\"blah\">\n</form>\n",
	"/broken_form_5": `<div id="loginform">
<form method="post" name="loginform" action="ChkLogin">
<h3>Login</h3>
<input name="username" id="username" type="text"><br/>
<input name="password" type="password"><br/>
<div id="buttonbar">
<input value="Login" name="login" class="button" type="submit">
</div>
</form>
</div>`,
	"/broken_linktext": "<a href=\"/\">\n<span>some text</span>\n</a>\n",

	"/test_global_form": `<html>
<head><title>Broken</title></head>
<body>
<div>
<input name="global_form_entry" type="text">
<input name="global_entry_2" type="text">
</div>
<form name="login" method="post" action="/display_post">
<input type=text name=hello>
<input type=submit>
</form>
<form name="login2" method="post" action="/display_post">
<input type=text name=hello>
<input type=submit>
</form>
</body>
</html>`,

	"/readonly_form": `<form name=ro method=POST action=/display_post>
<input type=text name=locked value=fixed readonly>
<input type=text name=free>
<input type=file name=attachment>
<input type=submit value=go>
</form>`,

	"/single_field": `<form method=POST action=/echo_body>
<input type=text name=n value=v>
</form>`,

	"/get_form": `<form name=search action=/display_get?stale=1>
<input type=text name=q>
<input type=submit name=go value=Search>
</form>`,
}
