package mcpserver

// DocumentFormatContract describes the canonical document format that
// LLM consumers should follow when creating or updating content.
const DocumentFormatContract = `# Ansuz Document Format Contract

Every Markdown document stored in Ansuz MUST follow this structure.

## Structure

` + "```" + `markdown
---
title: Human-readable title        # REQUIRED - text; used in pages, search, navigation
description: One-line summary       # OPTIONAL - text; used for meta tags and lists
image: "583231"                     # OPTIONAL - text; image id resolved via the configured provider
tags:                               # OPTIONAL - YAML list of text values
  - tag-one
  - tag-two
draft: false                        # OPTIONAL - true keeps the document out of pages and search
---

Body text in standard Markdown (GFM tables and strikethrough supported).
` + "```" + `

## Rules

1. **YAML front matter is mandatory.** The ` + "```" + `---` + "```" + ` fences must be the first
   thing in the file (no leading blank lines).
2. **` + "`" + `title` + "`" + ` is required and must be text.** A missing or non-text title is
   rejected before anything reaches disk.
3. **Optional fields stay absent.** Omit ` + "`" + `description` + "`" + `, ` + "`" + `image` + "`" + `, and ` + "`" + `tags` + "`" + `
   entirely rather than writing empty placeholders; absent means absent.
4. **Tags** are a YAML sequence of text values, lowercase kebab-case
   (e.g. ` + "`" + `getting-started` + "`" + `).
5. **File paths** end with ` + "`" + `.md` + "`" + ` and use forward slashes. The path decides
   the page route: ` + "`" + `guides/setup.md` + "`" + ` serves at ` + "`" + `/guides/setup` + "`" + `,
   ` + "`" + `index.md` + "`" + ` files collapse into their directory route.
6. **Locales** live in their own top-level directory named by code:
   ` + "`" + `fr/guides/setup.md` + "`" + ` is the French edition, served at ` + "`" + `/fr/guides/setup` + "`" + `.
7. **Encoding** is UTF-8 with a trailing newline.

## Components

Documents may embed registered components with directives on their own line:

` + "```" + `markdown
::app-link{to="/guides/setup" title="Setup guide"}
Read the setup guide
::

::app-image{src="583231" alt="Avatar"}
` + "```" + `

- ` + "`" + `app-link` + "`" + ` requires ` + "`" + `to` + "`" + `; the inner block is the link text.
- ` + "`" + `app-image` + "`" + ` requires ` + "`" + `src` + "`" + ` (an image id or path); optional ` + "`" + `alt` + "`" + `,
  ` + "`" + `provider` + "`" + `, and ` + "`" + `base` + "`" + ` control resolution. Output is always webp.
- A directive without a closing ` + "`" + `::` + "`" + ` line is self-closing.

## Assets & Images

- Upload assets via the ` + "`" + `upload_asset` + "`" + ` tool. It returns a ` + "`" + `markdownImage` + "`" + `
  field ready to paste into the document body.
- Assets are stored in the shared ` + "`" + `assets/` + "`" + ` directory (flat, no sub-folders).
- Reference in documents using the absolute path: ` + "`" + `![description](/assets/filename.png)` + "`" + `
- Supported formats: png, jpg, jpeg, gif, webp, svg, pdf.
- Remote avatar-style images need no upload: set ` + "`" + `image: "<id>"` + "`" + ` in front matter
  or use ` + "`" + `::app-image{src="<id>"}` + "`" + ` and the configured provider resolves the URL.

## Example

` + "```" + `markdown
---
title: Setting up the project
description: From a clean checkout to a running dev server
tags:
  - getting-started
---

# Setting up the project

Install the toolchain, then run the dev server.

::app-image{src="583231" alt="Project mascot"}

See also:

::app-link{to="/guides/deploy"}
Deploying to production
::
` + "```" + `
`
