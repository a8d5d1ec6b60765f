package language

var labels = []Label{
	"JavaScript",
	"TypeScript",
	"React",
	"Next.js",
	"Node.js",
	"Python",
	"Java",
	"C++",
	"C#",
	"PHP",
	"Ruby",
	"Go",
	"Rust",
	"Swift",
	"Kotlin",
	"SQL",
	"HTML/CSS",
	"Docker",
	"Git",
	"Linux",
	"Appwrite",
	"Other",
}

// Labels returns the selectable labels in display order, Other last.
func Labels() []Label {
	return append([]Label(nil), labels...)
}

// Known reports whether l is one of the selectable labels.
func Known(l Label) bool {
	return contains(labels, l)
}

var samples = map[Label][]string{
	"JavaScript": {
		"TypeError: Cannot read property 'map' of undefined\n    at TodoList.render (App.js:42:18)\n    at React.createElement",
		"ReferenceError: $ is not defined\n    at main.js:15:5\n    at Module.eval (main.js:20:1)",
		"SyntaxError: Unexpected token '}' in JSON at position 156\n    at JSON.parse (<anonymous>)",
	},
	"TypeScript": {
		"Property 'id' does not exist on type '{}'. TS2339\n    at UserProfile.tsx:28:15\n    const userId = user.id;",
		"Type 'string | undefined' is not assignable to type 'string'. TS2322\n    at utils.ts:45:8",
		"Cannot find module 'react' or its corresponding type declarations. TS2307\n    at App.tsx:1:1",
	},
	"React": {
		"Warning: Each child in a list should have a unique \"key\" prop.\n    at TodoItem (TodoList.jsx:15:8)\n    at TodoList",
		"Error: Cannot update a component while rendering a different component\n    at App.js:67:12",
		"TypeError: Cannot read property 'setState' of undefined\n    at onClick (Button.jsx:8:5)",
	},
	"Next.js": {
		"Error: getStaticProps can only be exported from a page. Read more: https://nextjs.org/docs\n    at pages/component.js:1:1",
		"Module not found: Can't resolve 'next/image'\n    at webpack (pages/_app.js:3:1)",
		"TypeError: Cannot read property 'query' of undefined\n    at getServerSideProps (pages/user/[id].js:12:8)",
	},
	"Node.js": {
		"Error: Cannot find module 'express'\n    at Function.Module._resolveFilename (internal/modules/cjs/loader.js:636:15)\n    at server.js:1:1",
		"ENOENT: no such file or directory, open './config.json'\n    at Object.openSync (fs.js:458:3)",
		"TypeError: app.listen is not a function\n    at Object.<anonymous> (server.js:15:5)",
	},
	"Python": {
		"NameError: name 'pandas' is not defined\n  File \"analysis.py\", line 12, in <module>\n    import pandas as pd\nNameError: name 'pandas' is not defined",
		"KeyError: 'missing_key'\n  File \"processor.py\", line 45, in process_data\n    value = data['missing_key']\nKeyError: 'missing_key'",
		"IndentationError: expected an indented block\n  File \"main.py\", line 23\n    print('hello')\n    ^\nIndentationError: expected an indented block",
	},
	"Java": {
		"java.lang.NullPointerException\n\tat com.example.Main.processData(Main.java:45)\n\tat com.example.Main.main(Main.java:12)",
		"java.lang.ClassNotFoundException: com.mysql.jdbc.Driver\n\tat java.net.URLClassLoader.findClass(URLClassLoader.java:381)",
		"java.lang.ArrayIndexOutOfBoundsException: Index 5 out of bounds for length 3\n\tat DataProcessor.process(DataProcessor.java:23)",
	},
	"C++": {
		"error: expected ';' before '}' token\n  main.cpp:25:1:\n   25 | }\n      | ^",
		"Segmentation fault (core dumped)\n    at main.cpp:15 in function processArray()",
		"error: 'cout' was not declared in this scope\n  main.cpp:10:5:\n   10 |     cout << \"Hello\";\n      |     ^~~~",
	},
	"C#": {
		"System.NullReferenceException: Object reference not set to an instance of an object.\n   at Program.Main(String[] args) in Program.cs:line 15",
		"CS0103: The name 'Console' does not exist in the current context\n  Program.cs(12,13): error CS0103",
		"System.ArgumentNullException: Parameter name: value\n   at String.IsNullOrEmpty(String value)",
	},
	"PHP": {
		"Fatal error: Uncaught Error: Call to undefined function mysqli_connect()\n  in database.php on line 12\nStack trace:\n#0 {main}",
		"Parse error: syntax error, unexpected '}', expecting ',' or ';'\n  in config.php on line 25",
		"Notice: Undefined variable: username in login.php on line 15",
	},
	"Ruby": {
		"NoMethodError: undefined method 'size' for nil:NilClass\n  from users.rb:23:in 'get_user_count'\n  from app.rb:15:in '<main>'",
		"NameError: undefined local variable or method 'user_name'\n  from models/user.rb:45:in 'display_info'",
		"LoadError: cannot load such file -- 'missing_gem'\n  from Gemfile:5:in '<top (required)>'",
	},
	"Go": {
		"panic: runtime error: invalid memory address or nil pointer dereference\n  goroutine 1 [running]:\n  main.processData()\n    main.go:15 +0x20",
		"undefined: fmt.Printf\n  main.go:10:2:\n   10 |   fmt.Printf(\"Hello\")\n      |   ^",
		"./main.go:25:12: cannot use \"string\" (type string) as type int in assignment",
	},
	"Rust": {
		"error[E0382]: borrow of moved value: `data`\n  --> src/main.rs:15:20\n   15 |     println!(\"{}\", data);\n      |                    ^^^^ value borrowed here after move",
		"thread 'main' panicked at 'index out of bounds: the len is 3 but the index is 5'\n  src/main.rs:23:5",
		"error[E0308]: mismatched types\n  --> src/main.rs:10:13\n   10 |     let x: i32 = \"hello\";\n      |        ---   ^^^^^^^ expected `i32`, found `&str`",
	},
	"Swift": {
		"Thread 1: Fatal error: Index out of range\n  ViewController.swift:45:21\n   45 |         let item = items[index]\n      |                          ^",
		"error: value of type 'String' has no member 'count'\n  main.swift:12:15\n   12 |     let len = str.count\n      |               ~~~ ^~~~~",
		"Thread 1: EXC_BAD_ACCESS (code=1, address=0x0)\n  AppDelegate.swift:25",
	},
	"Kotlin": {
		"kotlin.KotlinNullPointerException\n\tat MainActivity.onCreate(MainActivity.kt:15)\n\tat android.app.Activity.performCreate",
		"error: unresolved reference: println\n  Main.kt:5:5\n   5 |     println(\"Hello\")\n      |     ^~~~~~~",
		"Type mismatch: inferred type is String but Int was expected\n  Main.kt:10:17",
	},
	"SQL": {
		"ERROR 1146 (42S02): Table 'database.users' doesn't exist\n  at line 1: SELECT * FROM users WHERE id = 1;",
		"ERROR 1064 (42000): You have an error in your SQL syntax near 'FROM users' at line 1\n  SELECT * users WHERE id = 1;",
		"ERROR 1062 (23000): Duplicate entry 'john@email.com' for key 'users.email'",
	},
	"HTML/CSS": {
		"Uncaught ReferenceError: $ is not defined\n    at index.html:15:5\n  <script>$(document).ready(function() {",
		"CSS Error: Expected RBRACE at line 25, col 1\n  styles.css:25:1\n   25 | .container {\n      |            ^",
		"HTML Validation Error: End tag 'div' seen, but there were open elements.\n  index.html:45:1",
	},
	"Docker": {
		"ERROR: failed to solve: executor failed running [/bin/sh -c npm install]: exit code: 1\n  Dockerfile:15\n   15 | RUN npm install",
		"docker: Error response from daemon: pull access denied for myimage, repository does not exist\n  docker run myimage:latest",
		"Container exited with code 137 (killed by SIGKILL)\n  docker logs container_id",
	},
	"Git": {
		"fatal: not a git repository (or any of the parent directories): .git\n  git status",
		"error: Your local changes would be overwritten by merge.\n  Aborting.\n  git pull origin main",
		"CONFLICT (content): Merge conflict in src/main.js\n  Automatic merge failed; fix conflicts and then commit the result.",
	},
	"Linux": {
		"bash: command not found: python3\n  /usr/bin/env: 'python3': No such file or directory",
		"Permission denied: cannot create directory '/var/log/myapp'\n  mkdir: cannot create directory '/var/log/myapp': Permission denied",
	},
	"Appwrite": {
		"AppwriteException: Document with the requested ID could not be found.\n  at Users.get() in users.js:25\n  Error Code: 404",
		"AppwriteException: Collection with the requested ID could not be found.\n  at Database.getCollection() in database.js:15",
		"Function execution failed: Runtime error in function 'processUser'\n  at line 10: TypeError: Cannot read property 'email' of undefined",
	},
	"Other": {
		"Error: An unexpected error occurred during processing\n  at processRequest() in handler.js:42:15",
		"RuntimeError: Operation failed with status code 500\n  at executeOperation() in service.js:28:8",
		"ValidationError: Required field 'name' is missing\n  at validateInput() in validator.js:15:12",
	},
}

// Samples returns example errors for l, falling back to the Other set.
func Samples(l Label) []string {
	s, ok := samples[l]
	if !ok {
		s = samples[Other]
	}
	return append([]string(nil), s...)
}
