package tools

import "github.com/reusee/quizrun/generators"

var renderPageDecl = generators.FuncDecl{
	Name:        RenderPageName,
	Description: "Fetch and render a web page, executing its JavaScript, and return the fully rendered HTML. Use it first on every quiz URL.",
	Params: generators.Vars{
		{
			Name:        "url",
			Type:        generators.TypeString,
			Description: "The URL to fetch and render.",
		},
	},
}

var fetchFileDecl = generators.FuncDecl{
	Name:        FetchFileName,
	Description: "Download a file (PDF, CSV, image, audio, video, archive, ...) and save it under the files directory. Returns the local path.",
	Params: generators.Vars{
		{
			Name:        "url",
			Type:        generators.TypeString,
			Description: "Direct URL of the file.",
		},
		{
			Name:        "filename",
			Type:        generators.TypeString,
			Optional:    true,
			Description: "Name to save the file as. Derived from the URL when omitted.",
		},
	},
}

var executeCodeDecl = generators.FuncDecl{
	Name:        ExecuteCodeName,
	Description: "Execute Python code in a subprocess from the working directory and return stdout, stderr and exit_code. Downloaded files are readable; save generated artifacts under the outputs directory. The process is killed when it runs too long.",
	Params: generators.Vars{
		{
			Name:        "code",
			Type:        generators.TypeString,
			Description: "Complete Python source to execute. Print the values you need to see.",
		},
	},
}

var submitAnswerDecl = generators.FuncDecl{
	Name:        SubmitAnswerName,
	Description: "POST a JSON payload to the submission endpoint named on the quiz page. Returns the status code and the parsed response, which may carry the next quiz url.",
	Params: generators.Vars{
		{
			Name:        "url",
			Type:        generators.TypeString,
			Description: "The submission endpoint URL.",
		},
		{
			Name:        "payload",
			Type:        generators.TypeObject,
			Description: "The JSON body: email, secret, url of the quiz being answered, and answer.",
			Properties: generators.Vars{
				{
					Name:        "email",
					Type:        generators.TypeString,
					Optional:    true,
					Description: "Your email.",
				},
				{
					Name:        "secret",
					Type:        generators.TypeString,
					Optional:    true,
					Description: "Your secret.",
				},
				{
					Name:        "url",
					Type:        generators.TypeString,
					Optional:    true,
					Description: "URL of the quiz being answered.",
				},
				{
					Name:        "answer",
					Type:        generators.TypeAny,
					Description: "The answer: number, string, boolean, base64 string or object, as the quiz asks.",
				},
			},
		},
	},
}

var installDependencyDecl = generators.FuncDecl{
	Name:        InstallDependencyName,
	Description: "Install Python packages with pip so that execute_code can import them.",
	Params: generators.Vars{
		{
			Name: "packages",
			Type: generators.TypeArray,
			ItemType: &generators.Var{
				Name: "package",
				Type: generators.TypeString,
			},
			Description: `Package names, e.g. ["pandas", "pdfplumber"].`,
		},
	},
}
