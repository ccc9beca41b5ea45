package cytoscape

import "text/template"

// The init script runs after the engine and extension scripts. Config and ElementsURL
// are already JSON encoded, which also escapes anything that could close the script
// element.
var initScript = template.Must(template.New("init").Parse(`
(function () {
  var config = {{.Config}};
{{- if .Register}}
  {{.Register}}
{{- end}}
  var container = document.getElementById(config.container);

  function init(elements) {
    config.container = container;
    config.elements = elements;
    window.cy = cytoscape(config);
    console.log("initialized cytoscape");
  }
{{if .ElementsURL}}
  fetch({{.ElementsURL}}).then(function (response) {
    if (response.status >= 400) {
      throw new Error("Error fetching JSON: " + response.statusText);
    }
    return response.json();
  }).then(init);
{{- else}}
  init(config.elements);
{{- end}}
})();
`))

type scriptData struct {
	Config      string
	Register    string
	ElementsURL string
}
