package site

import "github.com/docsmith/mksite/internal/config"

// siteTheme is one selectable page treatment: the body class the layout
// carries and the stylesheet shipped to assets/mksite.css.
type siteTheme struct {
	BodyClass  string
	Stylesheet string
}

var siteThemes = map[config.ThemeName]siteTheme{
	config.ThemeMaterial:    {BodyClass: "theme-material", Stylesheet: baseStylesheet + materialStylesheet},
	config.ThemeReadTheDocs: {BodyClass: "theme-readthedocs", Stylesheet: baseStylesheet + readTheDocsStylesheet},
	config.ThemePlain:       {BodyClass: "theme-plain", Stylesheet: baseStylesheet},
}

// themeFor selects the treatment for a configured theme. Unknown names
// fall back to the plain layout, which is what the validator warns about.
func themeFor(t config.Theme) siteTheme {
	if st, ok := siteThemes[t.Type()]; ok {
		return st
	}
	return siteThemes[config.ThemePlain]
}

// baseStylesheet is the CSS shared by every theme. The palette flows in
// through the CSS variables set per page.
const baseStylesheet = `body{margin:0;font-family:system-ui,sans-serif;color:#222;}
.site-header{padding:0.75rem 1.25rem;display:flex;justify-content:space-between;}
.layout{display:flex;max-width:72rem;margin:0 auto;}
.site-nav{width:16rem;padding:1rem;font-size:0.9rem;}
.site-nav ul{list-style:none;padding-left:0.75rem;margin:0.25rem 0;}
.site-nav a{color:#222;text-decoration:none;}
.nav-section>span{font-weight:600;display:block;margin-top:0.5rem;}
.content{flex:1;padding:1rem 2rem;min-width:0;}
.headerlink{opacity:0;margin-left:0.25rem;text-decoration:none;}
h1:hover .headerlink,h2:hover .headerlink,h3:hover .headerlink{opacity:0.6;}
.admonition{border-left:4px solid #888;background:#f6f8fa;padding:0.5rem 1rem;margin:1rem 0;}
.admonition-title{font-weight:700;margin:0 0 0.25rem;}
.admonition.warning,.admonition.danger{border-left-color:#d73a49;}
.tabbed-block{border:1px solid #ddd;border-radius:4px;padding:0.5rem 1rem;margin:1rem 0;}
.tabbed-title{font-weight:600;margin:0 0 0.25rem;}
.highlight pre{background:#f6f8fa;padding:0.75rem;overflow-x:auto;border-radius:4px;}
table{border-collapse:collapse;}
td,th{border:1px solid #ddd;padding:0.35rem 0.6rem;}
`

// materialStylesheet paints the header and links with the palette colors.
const materialStylesheet = `.theme-material .site-header{background:var(--md-primary);color:#fff;}
.theme-material .site-header a{color:#fff;text-decoration:none;font-weight:600;}
.theme-material .site-nav a:hover{color:var(--md-accent);}
.theme-material .content a{color:var(--md-primary);}
.theme-material .admonition{border-left-color:var(--md-primary);}
`

// readTheDocsStylesheet mimics the classic grey-sidebar documentation look
// and ignores the palette.
const readTheDocsStylesheet = `.theme-readthedocs .site-header{background:#2980b9;color:#fff;}
.theme-readthedocs .site-header a{color:#fff;text-decoration:none;font-weight:600;}
.theme-readthedocs .layout{max-width:none;}
.theme-readthedocs .site-nav{background:#343131;color:#d9d9d9;width:18rem;}
.theme-readthedocs .site-nav a{color:#d9d9d9;}
.theme-readthedocs .site-nav a:hover{color:#fff;}
.theme-readthedocs .nav-section>span{color:#55a5d9;text-transform:uppercase;font-size:0.8rem;}
.theme-readthedocs .content a{color:#2980b9;}
`
