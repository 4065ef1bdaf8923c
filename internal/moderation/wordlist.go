package moderation

// DefaultDenylist is the Spanish profanity list messages are screened
// against. Terms are matched as case-insensitive substrings.
var DefaultDenylist = []string{
	"puta", "puto", "gilipollas", "mierda", "hostia", "joder",
	"coño", "cabrón", "cabron", "idiota", "imbécil", "imbecil",
	"subnormal", "hijo de puta", "maricon", "maricón",
	"perra", "cara polla", "comemierda", "polla",
}

// Subjects is the fixed list of course subjects a message can be filed
// under. The public feed filter accepts any of these or "todas" for all.
var Subjects = []string{
	"Desarrollo Web Entorno Servidor",
	"Desarrollo Web Entorno Cliente",
	"Diseño Interfaces",
	"Despliegue",
	"Digitalización",
	"Itinerario Personal",
	"Inglés",
	"Afondamiento",
}

// SubjectAll is the filter value meaning "no subject filter".
const SubjectAll = "todas"
